package persistence

import (
	"context"

	appshipment "github.com/lastmile/backend/internal/application/shipment"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shipment"
	"gorm.io/gorm"
)

// GormShipmentTransactionScope implements the shipment TransactionScope
// using GORM transactions.
type GormShipmentTransactionScope struct {
	db *gorm.DB
}

// NewGormShipmentTransactionScope creates a new GormShipmentTransactionScope.
func NewGormShipmentTransactionScope(db *gorm.DB) *GormShipmentTransactionScope {
	return &GormShipmentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormShipmentTransactionScope) Execute(ctx context.Context, fn func(repos appshipment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormShipmentRepositories{tx: tx}
		return fn(repos)
	})
}

// gormShipmentRepositories provides access to the shipment repositories within a transaction.
type gormShipmentRepositories struct {
	tx *gorm.DB
}

// Shipments returns the shipment repository scoped to the current transaction.
func (r *gormShipmentRepositories) Shipments() shipment.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormShipmentRepositories) Orders() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// History returns the order history repository scoped to the current transaction.
func (r *gormShipmentRepositories) History() order.OrderHistoryRepository {
	return NewGormOrderHistoryRepository(r.tx)
}

// Ensure GormShipmentTransactionScope implements TransactionScope
var _ appshipment.TransactionScope = (*GormShipmentTransactionScope)(nil)

// Ensure gormShipmentRepositories implements TransactionalRepositories
var _ appshipment.TransactionalRepositories = (*gormShipmentRepositories)(nil)
