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

// GormSettlementBatchRepository implements SettlementBatchRepository using GORM
type GormSettlementBatchRepository struct {
	db *gorm.DB
}

// NewGormSettlementBatchRepository creates a new GormSettlementBatchRepository
func NewGormSettlementBatchRepository(db *gorm.DB) *GormSettlementBatchRepository {
	return &GormSettlementBatchRepository{db: db}
}

// FindByID finds a batch with its transactions
func (r *GormSettlementBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.SettlementBatch, error) {
	var m models.SettlementBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Transactions").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode finds a batch by its code
func (r *GormSettlementBatchRepository) FindByCode(ctx context.Context, code string) (*settlement.SettlementBatch, error) {
	var m models.SettlementBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Transactions").
		Where("code = ?", code).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByTransactionCode finds the batch holding a transaction
func (r *GormSettlementBatchRepository) FindByTransactionCode(ctx context.Context, txCode string) (*settlement.SettlementBatch, error) {
	var m models.SettlementBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Transactions").
		Joins("JOIN settlement_transactions ON settlement_transactions.batch_id = settlement_batches.id").
		Where("settlement_transactions.code = ?", txCode).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByShop finds a shop's batches
func (r *GormSettlementBatchRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]settlement.SettlementBatch, error) {
	query := r.db.WithContext(ctx).Model(&models.SettlementBatchModel{}).
		Where("shop_id = ?", shopID)
	return r.findAll(query, filter)
}

// FindByPeriod finds batches overlapping the window
func (r *GormSettlementBatchRepository) FindByPeriod(ctx context.Context, from, to time.Time, filter shared.Filter) ([]settlement.SettlementBatch, error) {
	query := r.db.WithContext(ctx).Model(&models.SettlementBatchModel{}).
		Where("period_start < ? AND period_end > ?", to, from)
	return r.findAll(query, filter)
}

// Save creates or updates a batch with its transactions
func (r *GormSettlementBatchRepository) Save(ctx context.Context, b *settlement.SettlementBatch) error {
	m := models.SettlementBatchModelFromDomain(b)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Transactions").Save(m).Error; err != nil {
			return err
		}
		return r.saveTransactions(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSettlementBatchRepository) SaveWithLock(ctx context.Context, b *settlement.SettlementBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.SettlementBatchModel{}).
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
		m := models.SettlementBatchModelFromDomain(b)

		result := tx.Model(&models.SettlementBatchModel{}).
			Where("id = ? AND version = ?", m.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":       m.Status,
				"completed_at": m.CompletedAt,
				"version":      m.Version,
				"updated_at":   m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The batch has been modified by another user")
		}

		return r.saveTransactions(tx, m)
	})
}

// saveTransactions upserts the batch's transactions. Transactions are never
// removed from a batch, so no delete reconciliation is needed.
func (r *GormSettlementBatchRepository) saveTransactions(tx *gorm.DB, m *models.SettlementBatchModel) error {
	for i := range m.Transactions {
		m.Transactions[i].BatchID = m.ID
		if err := tx.Save(&m.Transactions[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// findAll runs the query with filters applied and converts the results
func (r *GormSettlementBatchRepository) findAll(query *gorm.DB, filter shared.Filter) ([]settlement.SettlementBatch, error) {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, SettlementBatchSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.SettlementBatchModel
	if err := query.Preload("Transactions").Find(&rows).Error; err != nil {
		return nil, err
	}

	batches := make([]settlement.SettlementBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// Ensure GormSettlementBatchRepository implements SettlementBatchRepository
var _ settlement.SettlementBatchRepository = (*GormSettlementBatchRepository)(nil)
