package promotion

import (
	"context"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// PromotionRepository defines the interface for promotion persistence
type PromotionRepository interface {
	// FindByID finds a promotion by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)

	// FindByCode finds a promotion by its code
	FindByCode(ctx context.Context, code string) (*Promotion, error)

	// FindActive finds active promotions
	FindActive(ctx context.Context, filter shared.Filter) ([]Promotion, error)

	// FindAll finds promotions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Promotion, error)

	// Save creates or updates a promotion
	Save(ctx context.Context, p *Promotion) error

	// SaveWithLock saves with optimistic locking (version check). Usage
	// counter updates go through this to catch concurrent increments.
	SaveWithLock(ctx context.Context, p *Promotion) error

	// Count counts promotions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// UserPromotionRepository persists per-user promotion links
type UserPromotionRepository interface {
	// FindByPromotionAndUser returns the link row, or ErrNotFound
	FindByPromotionAndUser(ctx context.Context, promotionID, userID uuid.UUID) (*UserPromotion, error)

	// FindByUser returns all links held by a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]UserPromotion, error)

	// Save creates or updates a link
	Save(ctx context.Context, up *UserPromotion) error
}
