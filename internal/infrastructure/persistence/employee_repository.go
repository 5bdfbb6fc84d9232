package persistence

import (
	"context"
	"errors"

	"github.com/lastmile/backend/internal/domain/network"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// FindByID finds an employee by ID
func (r *GormEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*network.Employee, error) {
	var m models.EmployeeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByUser finds the employee record of a user account
func (r *GormEmployeeRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*network.Employee, error) {
	var m models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByOffice finds the employees of an office
func (r *GormEmployeeRepository) FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]network.Employee, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EmployeeModel{}).
		Where("office_id = ?", officeID)

	if role, ok := filter.Filters["role"]; ok {
		query = query.Where("role = ?", role)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order("hired_at ASC")

	var rows []models.EmployeeModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	employees := make([]network.Employee, len(rows))
	for i := range rows {
		employees[i] = *rows[i].ToDomain()
	}
	return employees, nil
}

// Save creates or updates an employee
func (r *GormEmployeeRepository) Save(ctx context.Context, e *network.Employee) error {
	m := &models.EmployeeModel{}
	m.FromDomain(e)
	return r.db.WithContext(ctx).Save(m).Error
}

// Ensure GormEmployeeRepository implements EmployeeRepository
var _ network.EmployeeRepository = (*GormEmployeeRepository)(nil)
