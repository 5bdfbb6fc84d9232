package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/courier"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShipperAssignmentRepository implements ShipperAssignmentRepository
// using GORM
type GormShipperAssignmentRepository struct {
	db *gorm.DB
}

// NewGormShipperAssignmentRepository creates a new GormShipperAssignmentRepository
func NewGormShipperAssignmentRepository(db *gorm.DB) *GormShipperAssignmentRepository {
	return &GormShipperAssignmentRepository{db: db}
}

// FindByID finds an assignment by ID
func (r *GormShipperAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*courier.ShipperAssignment, error) {
	var m models.ShipperAssignmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByShipper returns all assignments of a shipper
func (r *GormShipperAssignmentRepository) FindByShipper(ctx context.Context, shipperID uuid.UUID) ([]courier.ShipperAssignment, error) {
	var rows []models.ShipperAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("shipper_id = ?", shipperID).
		Order("start_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAssignments(rows), nil
}

// FindOverlapping returns assignments for the same shipper and area whose
// half-open intervals intersect [startAt, endAt); nil endAt means open-ended
func (r *GormShipperAssignmentRepository) FindOverlapping(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, startAt time.Time, endAt *time.Time) ([]courier.ShipperAssignment, error) {
	query := r.db.WithContext(ctx).
		Where("shipper_id = ? AND city_code = ? AND ward_code = ?", shipperID, cityCode, wardCode).
		Where("end_at IS NULL OR end_at > ?", startAt)
	if endAt != nil {
		query = query.Where("start_at < ?", *endAt)
	}

	var rows []models.ShipperAssignmentModel
	if err := query.Order("start_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAssignments(rows), nil
}

// FindActiveCovering returns the shipper's assignment covering the area at
// the given instant, or ErrNotFound
func (r *GormShipperAssignmentRepository) FindActiveCovering(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, at time.Time) (*courier.ShipperAssignment, error) {
	var m models.ShipperAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("shipper_id = ? AND city_code = ? AND ward_code = ?", shipperID, cityCode, wardCode).
		Where("start_at <= ? AND (end_at IS NULL OR end_at > ?)", at, at).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save creates or updates an assignment
func (r *GormShipperAssignmentRepository) Save(ctx context.Context, a *courier.ShipperAssignment) error {
	m := models.ShipperAssignmentModelFromDomain(a)
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete removes an assignment
func (r *GormShipperAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ShipperAssignmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toAssignments(rows []models.ShipperAssignmentModel) []courier.ShipperAssignment {
	assignments := make([]courier.ShipperAssignment, len(rows))
	for i := range rows {
		assignments[i] = *rows[i].ToDomain()
	}
	return assignments
}

// Ensure GormShipperAssignmentRepository implements ShipperAssignmentRepository
var _ courier.ShipperAssignmentRepository = (*GormShipperAssignmentRepository)(nil)
