package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/shipment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentModel is the persistence model for the Shipment aggregate root.
type ShipmentModel struct {
	AggregateModel
	Code     string                  `gorm:"type:varchar(20);not null;uniqueIndex"`
	Type     shipment.ShipmentType   `gorm:"type:varchar(20);not null"`
	Status   shipment.ShipmentStatus `gorm:"type:varchar(20);not null;index"`
	OfficeID uuid.UUID               `gorm:"type:uuid;not null;index"`

	EmployeeID       *uuid.UUID `gorm:"type:uuid;index"`
	EmployeeOfficeID *uuid.UUID `gorm:"type:uuid"`

	VehicleID  *uuid.UUID      `gorm:"type:uuid"`
	CapacityKg decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`

	TotalWeightKg decimal.Decimal      `gorm:"type:decimal(10,3);not null;default:0"`
	Orders        []ShipmentOrderModel `gorm:"foreignKey:ShipmentID"`

	DepartedAt  *time.Time `gorm:"type:timestamptz"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
	CancelledAt *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment aggregate.
func (m *ShipmentModel) ToDomain() *shipment.Shipment {
	s := &shipment.Shipment{
		Code:             m.Code,
		Type:             m.Type,
		Status:           m.Status,
		OfficeID:         m.OfficeID,
		EmployeeID:       m.EmployeeID,
		EmployeeOfficeID: m.EmployeeOfficeID,
		VehicleID:        m.VehicleID,
		CapacityKg:       m.CapacityKg,
		TotalWeightKg:    m.TotalWeightKg,
		DepartedAt:       m.DepartedAt,
		CompletedAt:      m.CompletedAt,
		CancelledAt:      m.CancelledAt,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)

	s.Orders = make([]shipment.ShipmentOrder, len(m.Orders))
	for i := range m.Orders {
		s.Orders[i] = *m.Orders[i].ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Shipment aggregate.
func (m *ShipmentModel) FromDomain(s *shipment.Shipment) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Type = s.Type
	m.Status = s.Status
	m.OfficeID = s.OfficeID
	m.EmployeeID = s.EmployeeID
	m.EmployeeOfficeID = s.EmployeeOfficeID
	m.VehicleID = s.VehicleID
	m.CapacityKg = s.CapacityKg
	m.TotalWeightKg = s.TotalWeightKg
	m.DepartedAt = s.DepartedAt
	m.CompletedAt = s.CompletedAt
	m.CancelledAt = s.CancelledAt

	m.Orders = make([]ShipmentOrderModel, len(s.Orders))
	for i := range s.Orders {
		m.Orders[i].FromDomain(&s.Orders[i])
	}
}

// ShipmentModelFromDomain creates a new persistence model from a domain
// Shipment.
func ShipmentModelFromDomain(s *shipment.Shipment) *ShipmentModel {
	m := &ShipmentModel{}
	m.FromDomain(s)
	return m
}

// ShipmentOrderModel is the persistence model for an order attached to a
// shipment.
type ShipmentOrderModel struct {
	BaseModel
	ShipmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WeightKg   decimal.Decimal `gorm:"type:decimal(10,3);not null"`
}

// TableName returns the table name for GORM
func (ShipmentOrderModel) TableName() string {
	return "shipment_orders"
}

// ToDomain converts the persistence model to a domain ShipmentOrder.
func (m *ShipmentOrderModel) ToDomain() *shipment.ShipmentOrder {
	return &shipment.ShipmentOrder{
		BaseEntity: m.BaseModel.ToDomain(),
		ShipmentID: m.ShipmentID,
		OrderID:    m.OrderID,
		WeightKg:   m.WeightKg,
	}
}

// FromDomain populates the persistence model from a domain ShipmentOrder.
func (m *ShipmentOrderModel) FromDomain(so *shipment.ShipmentOrder) {
	m.FromDomainBaseEntity(so.BaseEntity)
	m.ShipmentID = so.ShipmentID
	m.OrderID = so.OrderID
	m.WeightKg = so.WeightKg
}
