package courier

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/courier"
)

// CreateAssignmentRequest gives a shipper responsibility for an area
type CreateAssignmentRequest struct {
	ShipperID uuid.UUID  `json:"shipper_id" binding:"required"`
	CityCode  int        `json:"city_code" binding:"required,gt=0"`
	WardCode  int        `json:"ward_code" binding:"required,gt=0"`
	StartAt   time.Time  `json:"start_at" binding:"required"`
	EndAt     *time.Time `json:"end_at"`
}

// TerminateAssignmentRequest closes an open-ended assignment
type TerminateAssignmentRequest struct {
	At time.Time `json:"at" binding:"required"`
}

// AssignmentResponse represents an area assignment in API responses
type AssignmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	ShipperID uuid.UUID  `json:"shipper_id"`
	OfficeID  uuid.UUID  `json:"office_id"`
	CityCode  int        `json:"city_code"`
	WardCode  int        `json:"ward_code"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToAssignmentResponse converts a domain assignment to a response DTO
func ToAssignmentResponse(a *courier.ShipperAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        a.ID,
		ShipperID: a.ShipperID,
		OfficeID:  a.OfficeID,
		CityCode:  a.CityCode,
		WardCode:  a.WardCode,
		StartAt:   a.StartAt,
		EndAt:     a.EndAt,
		CreatedAt: a.CreatedAt,
	}
}
