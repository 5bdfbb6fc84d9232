package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastmile/backend/internal/domain/identity"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByUsername finds a user by username. Usernames are stored lowercase.
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).
		First(&m, "username = ?", strings.ToLower(strings.TrimSpace(username))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByRole returns users holding the given role
func (r *GormUserRepository) FindByRole(ctx context.Context, role order.ActorRole, filter shared.Filter) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Where("role = ?", string(role))

	var rows []models.UserModel
	if err := paginate(query, filter).Order("username ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// FindByOffice returns users bound to an office
func (r *GormUserRepository) FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Where("office_id = ?", officeID)

	var rows []models.UserModel
	if err := paginate(query, filter).Order("username ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := filter.Offset()
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// Save creates a new user
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	m := models.UserModelFromDomain(u)
	return r.db.WithContext(ctx).Create(m).Error
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, u *identity.User) error {
	m := models.UserModelFromDomain(u)
	result := r.db.WithContext(ctx).Save(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByUsername checks if a username is already taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	return count > 0, err
}

// Count counts all users
func (r *GormUserRepository) Count(ctx context.Context, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

func toUsers(rows []models.UserModel) []identity.User {
	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users
}
