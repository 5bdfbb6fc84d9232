package persistence

import (
	"context"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderHistoryRepository implements OrderHistoryRepository using GORM.
// History rows are append-only; the repository never updates or deletes.
type GormOrderHistoryRepository struct {
	db *gorm.DB
}

// NewGormOrderHistoryRepository creates a new GormOrderHistoryRepository
func NewGormOrderHistoryRepository(db *gorm.DB) *GormOrderHistoryRepository {
	return &GormOrderHistoryRepository{db: db}
}

// Append stores one history row
func (r *GormOrderHistoryRepository) Append(ctx context.Context, h *order.OrderHistory) error {
	m := models.OrderHistoryModelFromDomain(h)
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByOrder returns the history rows of an order in chronological order
func (r *GormOrderHistoryRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderHistory, error) {
	var rows []models.OrderHistoryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	history := make([]order.OrderHistory, len(rows))
	for i := range rows {
		history[i] = *rows[i].ToDomain()
	}
	return history, nil
}

// Ensure GormOrderHistoryRepository implements OrderHistoryRepository
var _ order.OrderHistoryRepository = (*GormOrderHistoryRepository)(nil)
