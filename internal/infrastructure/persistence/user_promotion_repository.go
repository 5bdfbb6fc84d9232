package persistence

import (
	"context"
	"errors"

	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserPromotionRepository implements UserPromotionRepository using GORM
type GormUserPromotionRepository struct {
	db *gorm.DB
}

// NewGormUserPromotionRepository creates a new GormUserPromotionRepository
func NewGormUserPromotionRepository(db *gorm.DB) *GormUserPromotionRepository {
	return &GormUserPromotionRepository{db: db}
}

// FindByPromotionAndUser returns the link row, or ErrNotFound
func (r *GormUserPromotionRepository) FindByPromotionAndUser(ctx context.Context, promotionID, userID uuid.UUID) (*promotion.UserPromotion, error) {
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

// FindByUser returns all links held by a user
func (r *GormUserPromotionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]promotion.UserPromotion, error) {
	var rows []models.UserPromotionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	links := make([]promotion.UserPromotion, len(rows))
	for i := range rows {
		links[i] = *rows[i].ToDomain()
	}
	return links, nil
}

// Save creates or updates a link
func (r *GormUserPromotionRepository) Save(ctx context.Context, up *promotion.UserPromotion) error {
	m := &models.UserPromotionModel{}
	m.FromDomain(up)
	return r.db.WithContext(ctx).Save(m).Error
}

// Ensure GormUserPromotionRepository implements UserPromotionRepository
var _ promotion.UserPromotionRepository = (*GormUserPromotionRepository)(nil)
