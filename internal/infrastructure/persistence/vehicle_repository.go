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

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds a vehicle by ID
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*network.Vehicle, error) {
	var m models.VehicleModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByOffice finds the vehicles registered at an office
func (r *GormVehicleRepository) FindByOffice(ctx context.Context, officeID uuid.UUID) ([]network.Vehicle, error) {
	var rows []models.VehicleModel
	if err := r.db.WithContext(ctx).
		Where("office_id = ?", officeID).
		Order("plate ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	vehicles := make([]network.Vehicle, len(rows))
	for i := range rows {
		vehicles[i] = *rows[i].ToDomain()
	}
	return vehicles, nil
}

// Save creates or updates a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, v *network.Vehicle) error {
	m := &models.VehicleModel{}
	m.FromDomain(v)
	return r.db.WithContext(ctx).Save(m).Error
}

// Ensure GormVehicleRepository implements VehicleRepository
var _ network.VehicleRepository = (*GormVehicleRepository)(nil)
