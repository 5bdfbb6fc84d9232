package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/settlement"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubmissionBatchRepository implements SubmissionBatchRepository using GORM
type GormSubmissionBatchRepository struct {
	db *gorm.DB
}

// NewGormSubmissionBatchRepository creates a new GormSubmissionBatchRepository
func NewGormSubmissionBatchRepository(db *gorm.DB) *GormSubmissionBatchRepository {
	return &GormSubmissionBatchRepository{db: db}
}

// FindByID finds a batch by ID
func (r *GormSubmissionBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.SubmissionBatch, error) {
	var m models.SubmissionBatchModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode finds a batch by its code
func (r *GormSubmissionBatchRepository) FindByCode(ctx context.Context, code string) (*settlement.SubmissionBatch, error) {
	var m models.SubmissionBatchModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByShipper finds a shipper's batches
func (r *GormSubmissionBatchRepository) FindByShipper(ctx context.Context, shipperID uuid.UUID, filter shared.Filter) ([]settlement.SubmissionBatch, error) {
	query := r.db.WithContext(ctx).Model(&models.SubmissionBatchModel{}).
		Where("shipper_id = ?", shipperID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, SubmissionBatchSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.SubmissionBatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	batches := make([]settlement.SubmissionBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormSubmissionBatchRepository) Save(ctx context.Context, b *settlement.SubmissionBatch) error {
	m := models.SubmissionBatchModelFromDomain(b)
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSubmissionBatchRepository) SaveWithLock(ctx context.Context, b *settlement.SubmissionBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.SubmissionBatchModel{}).
			Where("id = ?", b.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != b.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The batch has been modified by another user")
		}

		b.Version++
		b.UpdatedAt = time.Now()
		m := models.SubmissionBatchModelFromDomain(b)

		result := tx.Model(&models.SubmissionBatchModel{}).
			Where("id = ? AND version = ?", m.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":              m.Status,
				"total_system_amount": m.TotalSystemAmount,
				"total_actual_amount": m.TotalActualAmount,
				"member_count":        m.MemberCount,
				"completed_at":        m.CompletedAt,
				"cancelled_at":        m.CancelledAt,
				"version":             m.Version,
				"updated_at":          m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The batch has been modified by another user")
		}
		return nil
	})
}

// Ensure GormSubmissionBatchRepository implements SubmissionBatchRepository
var _ settlement.SubmissionBatchRepository = (*GormSubmissionBatchRepository)(nil)
