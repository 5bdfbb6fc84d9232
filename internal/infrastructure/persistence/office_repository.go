package persistence

import (
	"context"
	"errors"

	"github.com/lastmile/backend/internal/domain/network"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOfficeRepository implements OfficeRepository using GORM
type GormOfficeRepository struct {
	db *gorm.DB
}

// NewGormOfficeRepository creates a new GormOfficeRepository
func NewGormOfficeRepository(db *gorm.DB) *GormOfficeRepository {
	return &GormOfficeRepository{db: db}
}

// FindByID finds an office by ID
func (r *GormOfficeRepository) FindByID(ctx context.Context, id uuid.UUID) (*network.Office, error) {
	var m models.OfficeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode finds an office by its code
func (r *GormOfficeRepository) FindByCode(ctx context.Context, code string) (*network.Office, error) {
	var m models.OfficeModel
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

// FindByCity finds the offices of a city
func (r *GormOfficeRepository) FindByCity(ctx context.Context, cityCode int) ([]network.Office, error) {
	var rows []models.OfficeModel
	if err := r.db.WithContext(ctx).
		Where("city_code = ?", cityCode).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOffices(rows), nil
}

// FindAll finds offices matching the filter
func (r *GormOfficeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]network.Office, error) {
	query := r.db.WithContext(ctx).Model(&models.OfficeModel{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, OfficeSortFields, "code")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("code ASC")
	}

	var rows []models.OfficeModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOffices(rows), nil
}

// Save creates or updates an office
func (r *GormOfficeRepository) Save(ctx context.Context, o *network.Office) error {
	m := &models.OfficeModel{}
	m.FromDomain(o)
	return r.db.WithContext(ctx).Save(m).Error
}

func toOffices(rows []models.OfficeModel) []network.Office {
	offices := make([]network.Office, len(rows))
	for i := range rows {
		offices[i] = *rows[i].ToDomain()
	}
	return offices
}

// Ensure GormOfficeRepository implements OfficeRepository
var _ network.OfficeRepository = (*GormOfficeRepository)(nil)
