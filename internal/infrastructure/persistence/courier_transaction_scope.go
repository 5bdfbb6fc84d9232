package persistence

import (
	"context"

	appcourier "github.com/lastmile/backend/internal/application/courier"
	"github.com/lastmile/backend/internal/domain/courier"
	"gorm.io/gorm"
)

// GormCourierTransactionScope implements the courier TransactionScope using
// GORM transactions. It serializes the overlap re-check with the insert.
type GormCourierTransactionScope struct {
	db *gorm.DB
}

// NewGormCourierTransactionScope creates a new GormCourierTransactionScope.
func NewGormCourierTransactionScope(db *gorm.DB) *GormCourierTransactionScope {
	return &GormCourierTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormCourierTransactionScope) Execute(ctx context.Context, fn func(repos appcourier.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormCourierRepositories{tx: tx}
		return fn(repos)
	})
}

// gormCourierRepositories provides access to the assignment repository within a transaction.
type gormCourierRepositories struct {
	tx *gorm.DB
}

// Assignments returns the assignment repository scoped to the current transaction.
func (r *gormCourierRepositories) Assignments() courier.ShipperAssignmentRepository {
	return NewGormShipperAssignmentRepository(r.tx)
}

// Ensure GormCourierTransactionScope implements TransactionScope
var _ appcourier.TransactionScope = (*GormCourierTransactionScope)(nil)

// Ensure gormCourierRepositories implements TransactionalRepositories
var _ appcourier.TransactionalRepositories = (*gormCourierRepositories)(nil)
