package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUsageReader implements promotion.UsageReader over the orders and users
// tables. Usage counts are derived from orders carrying the promotion ID, so
// no separate usage ledger is needed.
type GormUsageReader struct {
	db *gorm.DB
}

// NewGormUsageReader creates a new GormUsageReader
func NewGormUsageReader(db *gorm.DB) *GormUsageReader {
	return &GormUsageReader{db: db}
}

// FindUserPromotion returns the user's link for a non-global promotion
func (r *GormUsageReader) FindUserPromotion(ctx context.Context, promotionID, userID uuid.UUID) (*promotion.UserPromotion, error) {
	var m models.UserPromotionModel
	if err := r.db.WithContext(ctx).
		Where("promotion_id = ? AND user_id = ?", promotionID, userID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// CountUsageOnDate counts promotion uses on the given calendar day
func (r *GormUsageReader) CountUsageOnDate(ctx context.Context, promotionID uuid.UUID, day time.Time) (int, error) {
	dayStart, dayEnd := dayBounds(day)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("promotion_id = ? AND status <> ? AND created_at >= ? AND created_at < ?",
			promotionID, order.StatusCancelled, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountUserUsageOnDate counts one user's uses on the given calendar day
func (r *GormUsageReader) CountUserUsageOnDate(ctx context.Context, promotionID, userID uuid.UUID, day time.Time) (int, error) {
	dayStart, dayEnd := dayBounds(day)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("promotion_id = ? AND customer_id = ? AND status <> ? AND created_at >= ? AND created_at < ?",
			promotionID, userID, order.StatusCancelled, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountUserOrders counts the user's non-cancelled orders
func (r *GormUsageReader) CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("customer_id = ? AND status <> ?", userID, order.StatusCancelled).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UserSignupTime returns when the user account was created
func (r *GormUsageReader) UserSignupTime(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var createdAt time.Time
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Select("created_at").
		Scan(&createdAt).Error
	if err != nil {
		return time.Time{}, err
	}
	if createdAt.IsZero() {
		return time.Time{}, shared.ErrNotFound
	}
	return createdAt, nil
}

// dayBounds returns the half-open [start, end) window of the calendar day
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// Ensure GormUsageReader implements UsageReader
var _ promotion.UsageReader = (*GormUsageReader)(nil)
