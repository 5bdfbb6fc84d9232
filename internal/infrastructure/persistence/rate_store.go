package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/pricing"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRateStore implements the pricing RateStore over the rate_brackets and
// fee_configs tables
type GormRateStore struct {
	db *gorm.DB
}

// NewGormRateStore creates a new GormRateStore
func NewGormRateStore(db *gorm.DB) *GormRateStore {
	return &GormRateStore{db: db}
}

// FindBracket returns the bracket covering the weight for the service type
// and region class. Brackets span (weight_from_kg, weight_to_kg]; an open
// upper bound is stored as NULL.
func (r *GormRateStore) FindBracket(ctx context.Context, serviceTypeID uuid.UUID, region pricing.RegionClass, weightKg decimal.Decimal) (*pricing.RateBracket, error) {
	var m models.RateBracketModel
	err := r.db.WithContext(ctx).
		Where("service_type_id = ? AND region = ?", serviceTypeID, region).
		Where("weight_from_kg < ?", weightKg).
		Where("(weight_to_kg IS NULL OR weight_to_kg >= ?)", weightKg).
		Order("weight_from_kg DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindFeeConfigs returns the active auxiliary fee rows in effect for the
// service type
func (r *GormRateStore) FindFeeConfigs(ctx context.Context, serviceTypeID uuid.UUID) ([]pricing.FeeConfig, error) {
	var rows []models.FeeConfigModel
	err := r.db.WithContext(ctx).
		Where("service_type_id = ? AND active = ? AND effective_from <= ?", serviceTypeID, true, time.Now()).
		Order("kind ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	configs := make([]pricing.FeeConfig, len(rows))
	for i := range rows {
		configs[i] = *rows[i].ToDomain()
	}
	return configs, nil
}

// FindServiceType returns a service type by ID
func (r *GormRateStore) FindServiceType(ctx context.Context, id uuid.UUID) (*pricing.ServiceType, error) {
	var m models.ServiceTypeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// ListServiceTypes returns all active service types
func (r *GormRateStore) ListServiceTypes(ctx context.Context) ([]pricing.ServiceType, error) {
	var rows []models.ServiceTypeModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	types := make([]pricing.ServiceType, len(rows))
	for i := range rows {
		types[i] = *rows[i].ToDomain()
	}
	return types, nil
}

// Ensure GormRateStore implements RateStore
var _ pricing.RateStore = (*GormRateStore)(nil)
