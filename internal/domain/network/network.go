package network

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
)

// Office is a physical branch of the delivery network
type Office struct {
	shared.BaseEntity
	Code     string
	Name     string
	Street   string
	CityCode int
	WardCode int
	Phone    string
	Active   bool
}

// NewOffice creates an active office
func NewOffice(code, name, street string, cityCode, wardCode int) (*Office, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Office code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Office name cannot be empty")
	}
	if cityCode <= 0 || wardCode <= 0 {
		return nil, shared.NewDomainError("INVALID_AREA", "City and ward codes must be positive")
	}
	return &Office{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Street:     street,
		CityCode:   cityCode,
		WardCode:   wardCode,
		Active:     true,
	}, nil
}

// EmployeeRole is the job of an office employee
type EmployeeRole string

const (
	EmployeeManager EmployeeRole = "MANAGER"
	EmployeeShipper EmployeeRole = "SHIPPER"
	EmployeeDriver  EmployeeRole = "DRIVER"
)

// IsValid checks if the role is valid
func (r EmployeeRole) IsValid() bool {
	switch r {
	case EmployeeManager, EmployeeShipper, EmployeeDriver:
		return true
	}
	return false
}

// Employee works at one office
type Employee struct {
	shared.BaseEntity
	UserID   uuid.UUID
	OfficeID uuid.UUID
	Role     EmployeeRole
	Active   bool
	HiredAt  time.Time
}

// NewEmployee creates an active employee at an office
func NewEmployee(userID, officeID uuid.UUID, role EmployeeRole) (*Employee, error) {
	if userID == uuid.Nil || officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User and office IDs are required")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown employee role")
	}
	return &Employee{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		OfficeID:   officeID,
		Role:       role,
		Active:     true,
		HiredAt:    time.Now(),
	}, nil
}

// WorksAt reports whether the employee belongs to the office
func (e *Employee) WorksAt(officeID uuid.UUID) bool {
	return e.Active && e.OfficeID == officeID
}

// Vehicle carries shipments; its capacity bounds shipment loading
type Vehicle struct {
	shared.BaseEntity
	OfficeID   uuid.UUID
	Plate      string
	CapacityKg decimal.Decimal
	Active     bool
}

// NewVehicle registers a vehicle at an office
func NewVehicle(officeID uuid.UUID, plate string, capacityKg decimal.Decimal) (*Vehicle, error) {
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office ID cannot be empty")
	}
	if plate == "" {
		return nil, shared.NewDomainError("INVALID_PLATE", "Vehicle plate cannot be empty")
	}
	if capacityKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Vehicle capacity must be positive")
	}
	return &Vehicle{
		BaseEntity: shared.NewBaseEntity(),
		OfficeID:   officeID,
		Plate:      plate,
		CapacityKg: capacityKg,
		Active:     true,
	}, nil
}

// OfficeRepository persists offices
type OfficeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Office, error)
	FindByCode(ctx context.Context, code string) (*Office, error)
	FindByCity(ctx context.Context, cityCode int) ([]Office, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Office, error)
	Save(ctx context.Context, o *Office) error
}

// EmployeeRepository persists employees
type EmployeeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*Employee, error)
	FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]Employee, error)
	Save(ctx context.Context, e *Employee) error
}

// VehicleRepository persists vehicles
type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindByOffice(ctx context.Context, officeID uuid.UUID) ([]Vehicle, error)
	Save(ctx context.Context, v *Vehicle) error
}
