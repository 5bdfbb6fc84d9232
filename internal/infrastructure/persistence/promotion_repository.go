package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPromotionRepository implements PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByID finds a promotion by ID
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var m models.PromotionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}

// FindByCode finds a promotion by its code
func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	var m models.PromotionModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}

// FindActive finds active promotions whose date window includes now
func (r *GormPromotionRepository) FindActive(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, error) {
	now := time.Now()
	query := r.db.WithContext(ctx).Model(&models.PromotionModel{}).
		Where("status = ? AND start_date <= ? AND end_date > ?", promotion.StatusActive, now, now)
	return r.findAll(query, filter)
}

// FindAll finds promotions matching the filter
func (r *GormPromotionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, error) {
	return r.findAll(r.db.WithContext(ctx).Model(&models.PromotionModel{}), filter)
}

// Save creates or updates a promotion
func (r *GormPromotionRepository) Save(ctx context.Context, p *promotion.Promotion) error {
	m, err := models.PromotionModelFromDomain(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPromotionRepository) SaveWithLock(ctx context.Context, p *promotion.Promotion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.PromotionModel{}).
			Where("id = ?", p.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != p.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The promotion has been modified by another user")
		}

		p.Version++
		p.UpdatedAt = time.Now()
		m, err := models.PromotionModelFromDomain(p)
		if err != nil {
			return err
		}

		result := tx.Model(&models.PromotionModel{}).
			Where("id = ? AND version = ?", m.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":                   m.Name,
				"description":            m.Description,
				"status":                 m.Status,
				"start_date":             m.StartDate,
				"end_date":               m.EndDate,
				"usage_limit":            m.UsageLimit,
				"used_count":             m.UsedCount,
				"per_user_limit":         m.PerUserLimit,
				"daily_limit":            m.DailyLimit,
				"daily_per_user_limit":   m.DailyPerUserLimit,
				"min_order_value":        m.MinOrderValue,
				"min_weight_kg":          m.MinWeightKg,
				"max_weight_kg":          m.MaxWeightKg,
				"min_prior_orders":       m.MinPriorOrders,
				"first_time_only":        m.FirstTimeOnly,
				"max_account_age_months": m.MaxAccountAgeMonths,
				"service_type_ids":       m.ServiceTypeIDs,
				"discount_type":          m.DiscountType,
				"discount_value":         m.DiscountValue,
				"max_discount_amount":    m.MaxDiscountAmount,
				"version":                m.Version,
				"updated_at":             m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The promotion has been modified by another user")
		}
		return nil
	})
}

// Count counts promotions matching the filter
func (r *GormPromotionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PromotionModel{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// findAll runs the query with filters applied and converts the results
func (r *GormPromotionRepository) findAll(query *gorm.DB, filter shared.Filter) ([]promotion.Promotion, error) {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, PromotionSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.PromotionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	promotions := make([]promotion.Promotion, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		promotions[i] = *p
	}
	return promotions, nil
}

// Ensure GormPromotionRepository implements PromotionRepository
var _ promotion.PromotionRepository = (*GormPromotionRepository)(nil)
