package shipment

import (
	"context"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shipment"
)

// TransactionScope provides transactional access to shipment repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a shipment
// operation touches. All repositories returned share the same underlying
// database transaction.
//
// Attaching orders and departing both read and write orders alongside the
// shipment, so the membership re-check and the order transitions commit
// atomically with the shipment itself.
type TransactionalRepositories interface {
	// Shipments returns the shipment repository scoped to the current transaction
	Shipments() shipment.ShipmentRepository
	// Orders returns the order repository scoped to the current transaction
	Orders() order.OrderRepository
	// History returns the order history repository scoped to the current transaction
	History() order.OrderHistoryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	shipments shipment.ShipmentRepository
	orders    order.OrderRepository
	history   order.OrderHistoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	shipments shipment.ShipmentRepository,
	orders order.OrderRepository,
	history order.OrderHistoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		shipments: shipments,
		orders:    orders,
		history:   history,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Shipments returns the shipment repository.
func (s *NoOpTransactionScope) Shipments() shipment.ShipmentRepository {
	return s.shipments
}

// Orders returns the order repository.
func (s *NoOpTransactionScope) Orders() order.OrderRepository {
	return s.orders
}

// History returns the order history repository.
func (s *NoOpTransactionScope) History() order.OrderHistoryRepository {
	return s.history
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
