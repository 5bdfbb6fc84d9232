package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/network"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfficeModel is the persistence model for a branch office.
type OfficeModel struct {
	BaseModel
	Code     string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	Street   string `gorm:"type:text"`
	CityCode int    `gorm:"not null;index"`
	WardCode int    `gorm:"not null"`
	Phone    string `gorm:"type:varchar(50)"`
	Active   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (OfficeModel) TableName() string {
	return "offices"
}

// ToDomain converts the persistence model to a domain Office.
func (m *OfficeModel) ToDomain() *network.Office {
	return &network.Office{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Street:     m.Street,
		CityCode:   m.CityCode,
		WardCode:   m.WardCode,
		Phone:      m.Phone,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Office.
func (m *OfficeModel) FromDomain(o *network.Office) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.Code = o.Code
	m.Name = o.Name
	m.Street = o.Street
	m.CityCode = o.CityCode
	m.WardCode = o.WardCode
	m.Phone = o.Phone
	m.Active = o.Active
}

// EmployeeModel is the persistence model for an office employee.
type EmployeeModel struct {
	BaseModel
	UserID   uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	OfficeID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Role     network.EmployeeRole `gorm:"type:varchar(20);not null"`
	Active   bool                 `gorm:"not null;default:true"`
	HiredAt  time.Time            `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee.
func (m *EmployeeModel) ToDomain() *network.Employee {
	return &network.Employee{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		OfficeID:   m.OfficeID,
		Role:       m.Role,
		Active:     m.Active,
		HiredAt:    m.HiredAt,
	}
}

// FromDomain populates the persistence model from a domain Employee.
func (m *EmployeeModel) FromDomain(e *network.Employee) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.UserID = e.UserID
	m.OfficeID = e.OfficeID
	m.Role = e.Role
	m.Active = e.Active
	m.HiredAt = e.HiredAt
}

// VehicleModel is the persistence model for a delivery vehicle.
type VehicleModel struct {
	BaseModel
	OfficeID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Plate      string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	CapacityKg decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	Active     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to a domain Vehicle.
func (m *VehicleModel) ToDomain() *network.Vehicle {
	return &network.Vehicle{
		BaseEntity: m.BaseModel.ToDomain(),
		OfficeID:   m.OfficeID,
		Plate:      m.Plate,
		CapacityKg: m.CapacityKg,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Vehicle.
func (m *VehicleModel) FromDomain(v *network.Vehicle) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.OfficeID = v.OfficeID
	m.Plate = v.Plate
	m.CapacityKg = v.CapacityKg
	m.Active = v.Active
}
