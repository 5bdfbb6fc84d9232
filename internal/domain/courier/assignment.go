package courier

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// ShipperAssignment gives one shipper responsibility for a (city, ward) area
// over a time range. A nil EndAt means the assignment is open-ended.
type ShipperAssignment struct {
	shared.BaseEntity
	ShipperID uuid.UUID
	OfficeID  uuid.UUID
	CityCode  int
	WardCode  int
	StartAt   time.Time
	EndAt     *time.Time
}

// NewShipperAssignment creates an assignment starting at the given time
func NewShipperAssignment(shipperID, officeID uuid.UUID, cityCode, wardCode int, startAt time.Time, endAt *time.Time) (*ShipperAssignment, error) {
	if shipperID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPPER", "Shipper ID cannot be empty")
	}
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office ID cannot be empty")
	}
	if cityCode <= 0 || wardCode <= 0 {
		return nil, shared.NewDomainError("INVALID_AREA", "City and ward codes must be positive")
	}
	if endAt != nil && !endAt.After(startAt) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "End must be after start")
	}

	return &ShipperAssignment{
		BaseEntity: shared.NewBaseEntity(),
		ShipperID:  shipperID,
		OfficeID:   officeID,
		CityCode:   cityCode,
		WardCode:   wardCode,
		StartAt:    startAt,
		EndAt:      endAt,
	}, nil
}

// SameArea reports whether both assignments cover the same shipper and area
func (a *ShipperAssignment) SameArea(other *ShipperAssignment) bool {
	return a.ShipperID == other.ShipperID &&
		a.CityCode == other.CityCode &&
		a.WardCode == other.WardCode
}

// Overlaps reports whether the [StartAt, EndAt) intervals of two assignments
// intersect. A nil EndAt is treated as extending forever.
func (a *ShipperAssignment) Overlaps(other *ShipperAssignment) bool {
	// a starts strictly before other ends, and other starts strictly
	// before a ends
	aBeforeOtherEnds := other.EndAt == nil || a.StartAt.Before(*other.EndAt)
	otherBeforeAEnds := a.EndAt == nil || other.StartAt.Before(*a.EndAt)
	return aBeforeOtherEnds && otherBeforeAEnds
}

// ActiveAt reports whether the assignment covers the given instant
func (a *ShipperAssignment) ActiveAt(at time.Time) bool {
	if at.Before(a.StartAt) {
		return false
	}
	return a.EndAt == nil || at.Before(*a.EndAt)
}

// Covers reports whether the assignment is active at the instant for the
// given ward and city
func (a *ShipperAssignment) Covers(cityCode, wardCode int, at time.Time) bool {
	return a.CityCode == cityCode && a.WardCode == wardCode && a.ActiveAt(at)
}

// Terminate closes an open-ended assignment at the given time
func (a *ShipperAssignment) Terminate(at time.Time) error {
	if a.EndAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Assignment is already terminated")
	}
	if !at.After(a.StartAt) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Termination must be after the start")
	}
	a.EndAt = &at
	a.UpdatedAt = time.Now()
	return nil
}

// ShipperAssignmentRepository persists area assignments
type ShipperAssignmentRepository interface {
	// FindByID finds an assignment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ShipperAssignment, error)

	// FindByShipper returns all assignments of a shipper
	FindByShipper(ctx context.Context, shipperID uuid.UUID) ([]ShipperAssignment, error)

	// FindOverlapping returns assignments for the same shipper and area
	// whose intervals intersect [startAt, endAt); nil endAt means open-ended
	FindOverlapping(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, startAt time.Time, endAt *time.Time) ([]ShipperAssignment, error)

	// FindActiveCovering returns the shipper's assignment covering the area
	// at the given instant, or ErrNotFound
	FindActiveCovering(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, at time.Time) (*ShipperAssignment, error)

	// Save creates or updates an assignment
	Save(ctx context.Context, a *ShipperAssignment) error

	// Delete removes an assignment
	Delete(ctx context.Context, id uuid.UUID) error
}
