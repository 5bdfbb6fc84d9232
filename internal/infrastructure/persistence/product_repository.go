package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByShop finds a shop's products
func (r *GormProductRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("shop_id = ?", shopID)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", searchPattern, searchPattern)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// FindBySKU finds a shop's product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).
		First(&m, "shop_id = ? AND sku = ?", shopID, sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	m := models.ProductModelFromDomain(p)
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveWithLock saves a product with optimistic locking. Stock changes race
// when orders reserve concurrently, so the version check rejects stale
// writes.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&models.ProductModel{}).
			Select("version").
			Where("id = ?", p.ID).
			Scan(&currentVersion).Error
		if err != nil {
			return err
		}

		if currentVersion != p.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "Product was modified by another process")
		}

		p.Version++
		result := tx.Model(&models.ProductModel{}).
			Where("id = ? AND version = ?", p.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":       p.Name,
				"sku":        p.SKU,
				"unit_value": p.UnitValue.Amount(),
				"weight_kg":  p.WeightKg,
				"stock":      p.Stock,
				"active":     p.Active,
				"version":    p.Version,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "Product was modified by another process")
		}
		return nil
	})
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
