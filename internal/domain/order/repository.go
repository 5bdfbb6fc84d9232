package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByTrackingNumber finds an order by its tracking number
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Order, error)

	// FindByCustomer finds orders created by or for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByShop finds orders owned by a merchant shop
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders in the given status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// FindByOffice finds orders whose origin or destination is the office
	FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// ExistsByTrackingNumber checks if a tracking number is already taken
	ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error)

	// CountByCustomer counts a customer's orders, optionally excluding
	// cancelled ones. Used by promotion eligibility checks.
	CountByCustomer(ctx context.Context, customerID uuid.UUID, excludeCancelled bool) (int64, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// OrderHistoryRepository persists the append-only audit trail
type OrderHistoryRepository interface {
	// Append stores one history row; rows are never updated or deleted
	Append(ctx context.Context, h *OrderHistory) error

	// FindByOrder returns the history rows of an order in chronological order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderHistory, error)
}
