package persistence

import (
	"context"

	appsettlement "github.com/lastmile/backend/internal/application/settlement"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/settlement"
	"gorm.io/gorm"
)

// GormSettlementTransactionScope implements the settlement TransactionScope
// using GORM transactions. Batch resolution writes the batch, its members
// and their orders atomically.
type GormSettlementTransactionScope struct {
	db *gorm.DB
}

// NewGormSettlementTransactionScope creates a new GormSettlementTransactionScope.
func NewGormSettlementTransactionScope(db *gorm.DB) *GormSettlementTransactionScope {
	return &GormSettlementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormSettlementTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormSettlementRepositories{tx: tx}
		return fn(repos)
	})
}

// gormSettlementRepositories provides access to the settlement repositories within a transaction.
type gormSettlementRepositories struct {
	tx *gorm.DB
}

// Submissions returns the payment submission repository scoped to the current transaction.
func (r *gormSettlementRepositories) Submissions() settlement.PaymentSubmissionRepository {
	return NewGormPaymentSubmissionRepository(r.tx)
}

// SubmissionBatches returns the shipper batch repository scoped to the current transaction.
func (r *gormSettlementRepositories) SubmissionBatches() settlement.SubmissionBatchRepository {
	return NewGormSubmissionBatchRepository(r.tx)
}

// MerchantBatches returns the merchant batch repository scoped to the current transaction.
func (r *gormSettlementRepositories) MerchantBatches() settlement.SettlementBatchRepository {
	return NewGormSettlementBatchRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormSettlementRepositories) Orders() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Ensure GormSettlementTransactionScope implements TransactionScope
var _ appsettlement.TransactionScope = (*GormSettlementTransactionScope)(nil)

// Ensure gormSettlementRepositories implements TransactionalRepositories
var _ appsettlement.TransactionalRepositories = (*gormSettlementRepositories)(nil)
