package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/courier"
	"github.com/google/uuid"
)

// ShipperAssignmentModel is the persistence model for a shipper's area
// assignment.
type ShipperAssignmentModel struct {
	BaseModel
	ShipperID uuid.UUID  `gorm:"type:uuid;not null;index:idx_assignment_shipper_area,priority:1"`
	OfficeID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CityCode  int        `gorm:"not null;index:idx_assignment_shipper_area,priority:2"`
	WardCode  int        `gorm:"not null;index:idx_assignment_shipper_area,priority:3"`
	StartAt   time.Time  `gorm:"type:timestamptz;not null"`
	EndAt     *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ShipperAssignmentModel) TableName() string {
	return "shipper_assignments"
}

// ToDomain converts the persistence model to a domain ShipperAssignment.
func (m *ShipperAssignmentModel) ToDomain() *courier.ShipperAssignment {
	return &courier.ShipperAssignment{
		BaseEntity: m.BaseModel.ToDomain(),
		ShipperID:  m.ShipperID,
		OfficeID:   m.OfficeID,
		CityCode:   m.CityCode,
		WardCode:   m.WardCode,
		StartAt:    m.StartAt,
		EndAt:      m.EndAt,
	}
}

// FromDomain populates the persistence model from a domain ShipperAssignment.
func (m *ShipperAssignmentModel) FromDomain(a *courier.ShipperAssignment) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.ShipperID = a.ShipperID
	m.OfficeID = a.OfficeID
	m.CityCode = a.CityCode
	m.WardCode = a.WardCode
	m.StartAt = a.StartAt
	m.EndAt = a.EndAt
}

// ShipperAssignmentModelFromDomain creates a new persistence model from a
// domain ShipperAssignment.
func ShipperAssignmentModelFromDomain(a *courier.ShipperAssignment) *ShipperAssignmentModel {
	m := &ShipperAssignmentModel{}
	m.FromDomain(a)
	return m
}
