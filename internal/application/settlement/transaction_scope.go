package settlement

import (
	"context"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/settlement"
)

// TransactionScope provides transactional access to settlement repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a settlement
// operation touches. All repositories returned share the same underlying
// database transaction.
//
// Completing a shipper batch settles every member's order; the order writes
// commit with the batch resolution or none of them do.
type TransactionalRepositories interface {
	// Submissions returns the payment submission repository scoped to the current transaction
	Submissions() settlement.PaymentSubmissionRepository
	// SubmissionBatches returns the shipper batch repository scoped to the current transaction
	SubmissionBatches() settlement.SubmissionBatchRepository
	// MerchantBatches returns the merchant batch repository scoped to the current transaction
	MerchantBatches() settlement.SettlementBatchRepository
	// Orders returns the order repository scoped to the current transaction
	Orders() order.OrderRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	submissions     settlement.PaymentSubmissionRepository
	batches         settlement.SubmissionBatchRepository
	merchantBatches settlement.SettlementBatchRepository
	orders          order.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	submissions settlement.PaymentSubmissionRepository,
	batches settlement.SubmissionBatchRepository,
	merchantBatches settlement.SettlementBatchRepository,
	orders order.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		submissions:     submissions,
		batches:         batches,
		merchantBatches: merchantBatches,
		orders:          orders,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Submissions returns the payment submission repository.
func (s *NoOpTransactionScope) Submissions() settlement.PaymentSubmissionRepository {
	return s.submissions
}

// SubmissionBatches returns the shipper batch repository.
func (s *NoOpTransactionScope) SubmissionBatches() settlement.SubmissionBatchRepository {
	return s.batches
}

// MerchantBatches returns the merchant batch repository.
func (s *NoOpTransactionScope) MerchantBatches() settlement.SettlementBatchRepository {
	return s.merchantBatches
}

// Orders returns the order repository.
func (s *NoOpTransactionScope) Orders() order.OrderRepository {
	return s.orders
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
