package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username (case-insensitive)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByRole finds users holding the given role
	FindByRole(ctx context.Context, role order.ActorRole, filter shared.Filter) ([]User, error)

	// FindByOffice finds users bound to an office
	FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]User, error)

	// Save creates a new user
	Save(ctx context.Context, u *User) error

	// Update updates an existing user
	Update(ctx context.Context, u *User) error

	// ExistsByUsername checks if a username is already taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Count counts users matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
