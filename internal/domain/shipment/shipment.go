package shipment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
)

// ShipmentType distinguishes last-mile runs from inter-office transfers
type ShipmentType string

const (
	TypeDelivery ShipmentType = "DELIVERY"
	TypeTransfer ShipmentType = "TRANSFER"
)

// IsValid checks if the shipment type is valid
func (t ShipmentType) IsValid() bool {
	return t == TypeDelivery || t == TypeTransfer
}

// ShipmentStatus is the lifecycle status of a shipment
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "PENDING"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusCompleted ShipmentStatus = "COMPLETED"
	StatusCancelled ShipmentStatus = "CANCELLED"
)

// IsActive reports whether the shipment still holds its orders exclusively
func (s ShipmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusInTransit
}

// ShipmentOrder is one order attached to a shipment
type ShipmentOrder struct {
	shared.BaseEntity
	ShipmentID uuid.UUID
	OrderID    uuid.UUID
	WeightKg   decimal.Decimal
}

// Shipment is a courier run or transfer leg. Orders may only be attached
// while the shipment is PENDING and within the vehicle's weight capacity.
type Shipment struct {
	shared.BaseAggregateRoot
	Code     string
	Type     ShipmentType
	Status   ShipmentStatus
	OfficeID uuid.UUID

	EmployeeID       *uuid.UUID
	EmployeeOfficeID *uuid.UUID

	VehicleID  *uuid.UUID
	CapacityKg decimal.Decimal

	TotalWeightKg decimal.Decimal
	Orders        []ShipmentOrder

	DepartedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// NewShipment creates a pending shipment for the given office
func NewShipment(code string, shipmentType ShipmentType, officeID uuid.UUID) (*Shipment, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Shipment code cannot be empty")
	}
	if !shipmentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown shipment type")
	}
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office ID cannot be empty")
	}

	return &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Type:              shipmentType,
		Status:            StatusPending,
		OfficeID:          officeID,
		TotalWeightKg:     decimal.Zero,
		Orders:            make([]ShipmentOrder, 0),
	}, nil
}

// AssignEmployee attaches the courier or driver running the shipment
func (s *Shipment) AssignEmployee(employeeID, employeeOfficeID uuid.UUID) error {
	if s.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Employee can only change on a pending shipment")
	}
	if employeeID == uuid.Nil || employeeOfficeID == uuid.Nil {
		return shared.NewDomainError("INVALID_EMPLOYEE", "Employee and office IDs are required")
	}
	s.EmployeeID = &employeeID
	s.EmployeeOfficeID = &employeeOfficeID
	s.UpdatedAt = time.Now()
	return nil
}

// AssignVehicle attaches the vehicle and fixes the weight capacity
func (s *Shipment) AssignVehicle(vehicleID uuid.UUID, capacityKg decimal.Decimal) error {
	if s.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Vehicle can only change on a pending shipment")
	}
	if vehicleID == uuid.Nil {
		return shared.NewDomainError("INVALID_VEHICLE", "Vehicle ID cannot be empty")
	}
	if capacityKg.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_CAPACITY", "Vehicle capacity must be positive")
	}
	if s.TotalWeightKg.GreaterThan(capacityKg) {
		return shared.ErrCapacityExceeded
	}
	s.VehicleID = &vehicleID
	s.CapacityKg = capacityKg
	s.UpdatedAt = time.Now()
	return nil
}

// CanCarry reports whether the extra weight fits the remaining capacity. A
// shipment without a vehicle has no capacity limit yet.
func (s *Shipment) CanCarry(weightKg decimal.Decimal) bool {
	if s.VehicleID == nil {
		return true
	}
	return s.TotalWeightKg.Add(weightKg).LessThanOrEqual(s.CapacityKg)
}

// AddOrder attaches an order, enforcing state, duplicates and capacity
func (s *Shipment) AddOrder(orderID uuid.UUID, weightKg decimal.Decimal) error {
	if s.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Orders can only be added to a pending shipment")
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	for _, so := range s.Orders {
		if so.OrderID == orderID {
			return shared.NewDomainError("DUPLICATE_ORDER", "Order is already on this shipment")
		}
	}
	if !s.CanCarry(weightKg) {
		return shared.ErrCapacityExceeded
	}

	s.Orders = append(s.Orders, ShipmentOrder{
		BaseEntity: shared.NewBaseEntity(),
		ShipmentID: s.ID,
		OrderID:    orderID,
		WeightKg:   weightKg,
	})
	s.TotalWeightKg = s.TotalWeightKg.Add(weightKg)
	s.UpdatedAt = time.Now()

	return nil
}

// RemoveOrder detaches an order from a pending shipment
func (s *Shipment) RemoveOrder(orderID uuid.UUID) error {
	if s.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Orders can only be removed from a pending shipment")
	}
	for i, so := range s.Orders {
		if so.OrderID == orderID {
			s.Orders = append(s.Orders[:i], s.Orders[i+1:]...)
			s.TotalWeightKg = s.TotalWeightKg.Sub(so.WeightKg)
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ORDER_NOT_FOUND", "Order is not on this shipment")
}

// Depart moves the shipment out of the office
func (s *Shipment) Depart() error {
	if s.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only a pending shipment can depart")
	}
	if len(s.Orders) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot depart with no orders")
	}
	if s.EmployeeID == nil {
		return shared.NewDomainError("INVALID_STATE", "Cannot depart without an assigned employee")
	}
	now := time.Now()
	s.Status = StatusInTransit
	s.DepartedAt = &now
	s.UpdatedAt = now
	return nil
}

// Complete finishes an in-transit shipment
func (s *Shipment) Complete() error {
	if s.Status != StatusInTransit {
		return shared.NewDomainError("INVALID_STATE", "Only an in-transit shipment can complete")
	}
	now := time.Now()
	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// Cancel aborts a pending shipment, releasing its orders
func (s *Shipment) Cancel() error {
	if s.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only a pending shipment can be cancelled")
	}
	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	return nil
}
