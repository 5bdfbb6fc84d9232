package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// MerchantBatchStatus is the lifecycle status of a merchant settlement batch
type MerchantBatchStatus string

const (
	MerchantBatchPending   MerchantBatchStatus = "PENDING"
	MerchantBatchPartial   MerchantBatchStatus = "PARTIAL"
	MerchantBatchCompleted MerchantBatchStatus = "COMPLETED"
	MerchantBatchFailed    MerchantBatchStatus = "FAILED"
)

// TransactionStatus is the status of one online payment attempt
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// SettlementTransaction records one online payment attempt against a
// merchant batch's balance
type SettlementTransaction struct {
	shared.BaseEntity
	BatchID    uuid.UUID
	Code       string
	Amount     valueobject.Money
	Status     TransactionStatus
	GatewayRef string
	ResolvedAt *time.Time
}

// SettlementBatch aggregates one shop's balance over a period. A negative
// balance means the shop owes the system; a positive one means the system
// owes the shop.
type SettlementBatch struct {
	shared.BaseAggregateRoot
	Code        string
	ShopID      uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time

	BalanceAmount valueobject.Money
	Status        MerchantBatchStatus

	Transactions []SettlementTransaction

	CompletedAt *time.Time
}

// NewSettlementBatch creates a pending merchant batch for the period
func NewSettlementBatch(code string, shopID uuid.UUID, periodStart, periodEnd time.Time, balance valueobject.Money) (*SettlementBatch, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Batch code cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Period end must be after period start")
	}

	return &SettlementBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		ShopID:            shopID,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		BalanceAmount:     balance,
		Status:            MerchantBatchPending,
		Transactions:      make([]SettlementTransaction, 0),
	}, nil
}

// RemainingOwed is the absolute balance minus the sum of successful
// transaction amounts
func (b *SettlementBatch) RemainingOwed() valueobject.Money {
	remaining := b.BalanceAmount.Abs()
	for _, tx := range b.Transactions {
		if tx.Status == TransactionSuccess {
			remaining = remaining.MustSubtract(tx.Amount)
		}
	}
	if remaining.IsNegative() {
		return valueobject.ZeroVND()
	}
	return remaining
}

// CreateTransaction opens a new payment attempt against the remaining
// balance. The request is rejected when nothing is owed or the amount
// exceeds what remains.
func (b *SettlementBatch) CreateTransaction(code string, amount valueobject.Money) (*SettlementTransaction, error) {
	if b.Status == MerchantBatchCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "Batch is already settled")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Transaction code cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	remaining := b.RemainingOwed()
	if remaining.IsZero() {
		return nil, shared.ErrAmountExceedsOwed
	}
	if amount.Amount().GreaterThan(remaining.Amount()) {
		return nil, shared.ErrAmountExceedsOwed
	}

	tx := SettlementTransaction{
		BaseEntity: shared.NewBaseEntity(),
		BatchID:    b.ID,
		Code:       code,
		Amount:     amount,
		Status:     TransactionPending,
	}
	b.Transactions = append(b.Transactions, tx)
	b.UpdatedAt = time.Now()

	return &b.Transactions[len(b.Transactions)-1], nil
}

// ResolveTransaction applies a gateway outcome to the transaction with the
// given code. On success the batch moves to PARTIAL, or COMPLETED once the
// remaining owed amount reaches zero.
func (b *SettlementBatch) ResolveTransaction(code string, success bool, gatewayRef string) error {
	var tx *SettlementTransaction
	for i := range b.Transactions {
		if b.Transactions[i].Code == code {
			tx = &b.Transactions[i]
			break
		}
	}
	if tx == nil {
		return shared.ErrNotFound
	}
	if tx.Status != TransactionPending {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already resolved")
	}

	now := time.Now()
	tx.GatewayRef = gatewayRef
	tx.ResolvedAt = &now

	if !success {
		tx.Status = TransactionFailed
		if b.Status == MerchantBatchPending {
			b.Status = MerchantBatchFailed
		}
		b.UpdatedAt = now
		return nil
	}

	tx.Status = TransactionSuccess
	if b.RemainingOwed().IsZero() {
		b.Status = MerchantBatchCompleted
		b.CompletedAt = &now
	} else {
		b.Status = MerchantBatchPartial
	}
	b.UpdatedAt = now

	return nil
}
