package courier

import (
	"context"

	"github.com/lastmile/backend/internal/domain/courier"
)

// TransactionScope provides transactional access to assignment repositories.
// The overlap re-check and the insert run in the same transaction so two
// concurrent requests for the same area cannot both pass the check.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories an
// assignment operation touches.
type TransactionalRepositories interface {
	// Assignments returns the assignment repository scoped to the current transaction
	Assignments() courier.ShipperAssignmentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	assignments courier.ShipperAssignmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository.
func NewNoOpTransactionScope(assignments courier.ShipperAssignmentRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{assignments: assignments}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Assignments returns the assignment repository.
func (s *NoOpTransactionScope) Assignments() courier.ShipperAssignmentRepository {
	return s.assignments
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
