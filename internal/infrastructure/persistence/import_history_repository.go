package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastmile/backend/internal/domain/bulk"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
)

// GormImportHistoryRepository persists bulk import runs with GORM.
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates the repository.
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID loads one import run by ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	var model models.ImportHistoryModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists import runs matching the filter, newest first.
func (r *GormImportHistoryRepository) FindAll(
	ctx context.Context,
	filter bulk.ImportHistoryFilter,
	page, pageSize int,
) (*bulk.ImportHistoryListResult, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}), filter)

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}

	// Most recent first
	query = query.Order("started_at DESC NULLS LAST, created_at DESC")

	var historyModels []models.ImportHistoryModel
	if err := query.Find(&historyModels).Error; err != nil {
		return nil, err
	}

	return &bulk.ImportHistoryListResult{
		Items:      toImportHistories(historyModels),
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindByStatus lists all import runs in the given state.
func (r *GormImportHistoryRepository) FindByStatus(ctx context.Context, status bulk.ImportStatus) ([]*bulk.ImportHistory, error) {
	var historyModels []models.ImportHistoryModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	return toImportHistories(historyModels), nil
}

// FindPending lists runs still pending or processing, oldest first.
// Used on startup to fail runs orphaned by a crash.
func (r *GormImportHistoryRepository) FindPending(ctx context.Context) ([]*bulk.ImportHistory, error) {
	var historyModels []models.ImportHistoryModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []bulk.ImportStatus{bulk.ImportStatusPending, bulk.ImportStatusProcessing}).
		Order("created_at ASC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	return toImportHistories(historyModels), nil
}

// Save inserts or updates an import run.
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	model := models.ImportHistoryModelFromDomain(history)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an import run by ID.
func (r *GormImportHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ImportHistoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormImportHistoryRepository) applyFilters(query *gorm.DB, filter bulk.ImportHistoryFilter) *gorm.DB {
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ImportedBy != nil {
		query = query.Where("imported_by = ?", *filter.ImportedBy)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}
	return query
}

func toImportHistories(historyModels []models.ImportHistoryModel) []*bulk.ImportHistory {
	histories := make([]*bulk.ImportHistory, len(historyModels))
	for i := range historyModels {
		histories[i] = historyModels[i].ToDomain()
	}
	return histories
}

var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
