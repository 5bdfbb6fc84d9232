package persistence

import (
	"context"

	apporder "github.com/lastmile/backend/internal/application/order"
	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/promotion"
	"gorm.io/gorm"
)

// GormOrderTransactionScope implements the order TransactionScope using GORM
// transactions. It provides atomic execution of multiple repository
// operations.
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope.
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormOrderRepositories{tx: tx}
		return fn(repos)
	})
}

// gormOrderRepositories provides access to the order repositories within a transaction.
type gormOrderRepositories struct {
	tx *gorm.DB
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormOrderRepositories) Orders() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// History returns the order history repository scoped to the current transaction.
func (r *gormOrderRepositories) History() order.OrderHistoryRepository {
	return NewGormOrderHistoryRepository(r.tx)
}

// Promotions returns the promotion repository scoped to the current transaction.
func (r *gormOrderRepositories) Promotions() promotion.PromotionRepository {
	return NewGormPromotionRepository(r.tx)
}

// UserPromotions returns the user promotion repository scoped to the current transaction.
func (r *gormOrderRepositories) UserPromotions() promotion.UserPromotionRepository {
	return NewGormUserPromotionRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction.
func (r *gormOrderRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Ensure GormOrderTransactionScope implements TransactionScope
var _ apporder.TransactionScope = (*GormOrderTransactionScope)(nil)

// Ensure gormOrderRepositories implements TransactionalRepositories
var _ apporder.TransactionalRepositories = (*gormOrderRepositories)(nil)
