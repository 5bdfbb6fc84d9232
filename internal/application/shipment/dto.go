package shipment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shipment"
)

// CreateShipmentRequest represents a request to open a shipment
type CreateShipmentRequest struct {
	Type     shipment.ShipmentType `json:"type" binding:"required"`
	OfficeID uuid.UUID             `json:"office_id" binding:"required"`
}

// AssignEmployeeRequest puts an employee on a pending shipment
type AssignEmployeeRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
}

// AssignVehicleRequest puts a vehicle on a pending shipment
type AssignVehicleRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
}

// AttachOrdersRequest attaches a batch of orders to a pending shipment
type AttachOrdersRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1"`
}

// TransitionNoteRequest carries an optional note for depart and complete
type TransitionNoteRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ListShipmentsFilter narrows shipment listings
type ListShipmentsFilter struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	Status   string `form:"status"`
}

// ShipmentOrderResponse is one attached order in API responses
type ShipmentOrderResponse struct {
	OrderID  uuid.UUID       `json:"order_id"`
	WeightKg decimal.Decimal `json:"weight_kg"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID            uuid.UUID               `json:"id"`
	Code          string                  `json:"code"`
	Type          shipment.ShipmentType   `json:"type"`
	Status        shipment.ShipmentStatus `json:"status"`
	OfficeID      uuid.UUID               `json:"office_id"`
	EmployeeID    *uuid.UUID              `json:"employee_id,omitempty"`
	VehicleID     *uuid.UUID              `json:"vehicle_id,omitempty"`
	CapacityKg    decimal.Decimal         `json:"capacity_kg"`
	TotalWeightKg decimal.Decimal         `json:"total_weight_kg"`
	Orders        []ShipmentOrderResponse `json:"orders"`
	DepartedAt    *time.Time              `json:"departed_at,omitempty"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// AttachResultResponse is the outcome for one order in an attach batch
type AttachResultResponse struct {
	OrderID        uuid.UUID `json:"order_id"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	Attached       bool      `json:"attached"`
	Evaluated      bool      `json:"evaluated"`
	Reason         string    `json:"reason,omitempty"`
}

// AttachBatchResponse aggregates an attach batch
type AttachBatchResponse struct {
	Results     []AttachResultResponse `json:"results"`
	Attached    int                    `json:"attached"`
	Rejected    int                    `json:"rejected"`
	Unevaluated int                    `json:"unevaluated"`
}

// ToShipmentResponse converts a domain shipment to a response DTO
func ToShipmentResponse(s *shipment.Shipment) ShipmentResponse {
	orders := make([]ShipmentOrderResponse, 0, len(s.Orders))
	for _, so := range s.Orders {
		orders = append(orders, ShipmentOrderResponse{
			OrderID:  so.OrderID,
			WeightKg: so.WeightKg,
		})
	}
	return ShipmentResponse{
		ID:            s.ID,
		Code:          s.Code,
		Type:          s.Type,
		Status:        s.Status,
		OfficeID:      s.OfficeID,
		EmployeeID:    s.EmployeeID,
		VehicleID:     s.VehicleID,
		CapacityKg:    s.CapacityKg,
		TotalWeightKg: s.TotalWeightKg,
		Orders:        orders,
		DepartedAt:    s.DepartedAt,
		CompletedAt:   s.CompletedAt,
		CancelledAt:   s.CancelledAt,
		CreatedAt:     s.CreatedAt,
	}
}

// ToAttachBatchResponse converts a validator batch result to a response DTO.
// Rejection reasons surface the domain error code when one is available.
func ToAttachBatchResponse(r *shipment.BatchResult) AttachBatchResponse {
	results := make([]AttachResultResponse, 0, len(r.Results))
	for _, ar := range r.Results {
		out := AttachResultResponse{
			OrderID:        ar.OrderID,
			TrackingNumber: ar.TrackingNumber,
			Attached:       ar.Attached,
			Evaluated:      ar.Evaluated,
		}
		if ar.Err != nil {
			var domainErr *shared.DomainError
			if errors.As(ar.Err, &domainErr) {
				out.Reason = domainErr.Code
			} else {
				out.Reason = ar.Err.Error()
			}
		}
		results = append(results, out)
	}
	return AttachBatchResponse{
		Results:     results,
		Attached:    r.Attached,
		Rejected:    r.Rejected,
		Unevaluated: r.Unevaluated,
	}
}
