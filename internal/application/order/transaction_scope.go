package order

import (
	"context"

	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/promotion"
)

// TransactionScope provides transactional access to order repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories an order
// operation touches. All repositories returned share the same underlying
// database transaction.
//
// Orders and Promotions are separate aggregates: an order holds only the
// promotion ID, and usage counters on the promotion side are updated in the
// same transaction through SaveWithLock so concurrent claims of the last
// remaining use are serialized.
type TransactionalRepositories interface {
	// Orders returns the order repository scoped to the current transaction
	Orders() order.OrderRepository
	// History returns the order history repository scoped to the current transaction
	History() order.OrderHistoryRepository
	// Promotions returns the promotion repository scoped to the current transaction
	Promotions() promotion.PromotionRepository
	// UserPromotions returns the user promotion repository scoped to the current transaction
	UserPromotions() promotion.UserPromotionRepository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	orders     order.OrderRepository
	history    order.OrderHistoryRepository
	promotions promotion.PromotionRepository
	userPromos promotion.UserPromotionRepository
	products   catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orders order.OrderRepository,
	history order.OrderHistoryRepository,
	promotions promotion.PromotionRepository,
	userPromos promotion.UserPromotionRepository,
	products catalog.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:     orders,
		history:    history,
		promotions: promotions,
		userPromos: userPromos,
		products:   products,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Orders returns the order repository.
func (s *NoOpTransactionScope) Orders() order.OrderRepository {
	return s.orders
}

// History returns the order history repository.
func (s *NoOpTransactionScope) History() order.OrderHistoryRepository {
	return s.history
}

// Promotions returns the promotion repository.
func (s *NoOpTransactionScope) Promotions() promotion.PromotionRepository {
	return s.promotions
}

// UserPromotions returns the user promotion repository.
func (s *NoOpTransactionScope) UserPromotions() promotion.UserPromotionRepository {
	return s.userPromos
}

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
