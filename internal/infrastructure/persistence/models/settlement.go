package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/settlement"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSubmissionModel is the persistence model for a shipper's COD
// payment submission.
type PaymentSubmissionModel struct {
	AggregateModel
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ShipperID uuid.UUID `gorm:"type:uuid;not null;index"`

	SystemAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ActualAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	Status  settlement.SubmissionStatus `gorm:"type:varchar(20);not null;index"`
	BatchID *uuid.UUID                  `gorm:"type:uuid;index"`

	AdjustmentNote string     `gorm:"type:varchar(500)"`
	ResolvedAt     *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (PaymentSubmissionModel) TableName() string {
	return "payment_submissions"
}

// ToDomain converts the persistence model to a domain PaymentSubmission.
func (m *PaymentSubmissionModel) ToDomain() *settlement.PaymentSubmission {
	s := &settlement.PaymentSubmission{
		OrderID:        m.OrderID,
		ShipperID:      m.ShipperID,
		SystemAmount:   valueobject.NewVND(m.SystemAmount),
		ActualAmount:   valueobject.NewVND(m.ActualAmount),
		Status:         m.Status,
		BatchID:        m.BatchID,
		AdjustmentNote: m.AdjustmentNote,
		ResolvedAt:     m.ResolvedAt,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain PaymentSubmission.
func (m *PaymentSubmissionModel) FromDomain(s *settlement.PaymentSubmission) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.OrderID = s.OrderID
	m.ShipperID = s.ShipperID
	m.SystemAmount = s.SystemAmount.Amount()
	m.ActualAmount = s.ActualAmount.Amount()
	m.Status = s.Status
	m.BatchID = s.BatchID
	m.AdjustmentNote = s.AdjustmentNote
	m.ResolvedAt = s.ResolvedAt
}

// PaymentSubmissionModelFromDomain creates a new persistence model from a
// domain PaymentSubmission.
func PaymentSubmissionModelFromDomain(s *settlement.PaymentSubmission) *PaymentSubmissionModel {
	m := &PaymentSubmissionModel{}
	m.FromDomain(s)
	return m
}

// SubmissionBatchModel is the persistence model for a shipper settlement
// batch.
type SubmissionBatchModel struct {
	AggregateModel
	Code      string                 `gorm:"type:varchar(20);not null;uniqueIndex"`
	ShipperID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status    settlement.BatchStatus `gorm:"type:varchar(20);not null;index"`

	TotalSystemAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalActualAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MemberCount       int             `gorm:"not null;default:0"`

	CompletedAt *time.Time `gorm:"type:timestamptz"`
	CancelledAt *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (SubmissionBatchModel) TableName() string {
	return "submission_batches"
}

// ToDomain converts the persistence model to a domain SubmissionBatch.
func (m *SubmissionBatchModel) ToDomain() *settlement.SubmissionBatch {
	b := &settlement.SubmissionBatch{
		Code:              m.Code,
		ShipperID:         m.ShipperID,
		Status:            m.Status,
		TotalSystemAmount: valueobject.NewVND(m.TotalSystemAmount),
		TotalActualAmount: valueobject.NewVND(m.TotalActualAmount),
		MemberCount:       m.MemberCount,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain SubmissionBatch.
func (m *SubmissionBatchModel) FromDomain(b *settlement.SubmissionBatch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Code = b.Code
	m.ShipperID = b.ShipperID
	m.Status = b.Status
	m.TotalSystemAmount = b.TotalSystemAmount.Amount()
	m.TotalActualAmount = b.TotalActualAmount.Amount()
	m.MemberCount = b.MemberCount
	m.CompletedAt = b.CompletedAt
	m.CancelledAt = b.CancelledAt
}

// SubmissionBatchModelFromDomain creates a new persistence model from a
// domain SubmissionBatch.
func SubmissionBatchModelFromDomain(b *settlement.SubmissionBatch) *SubmissionBatchModel {
	m := &SubmissionBatchModel{}
	m.FromDomain(b)
	return m
}

// SettlementBatchModel is the persistence model for a merchant settlement
// batch.
type SettlementBatchModel struct {
	AggregateModel
	Code        string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	ShopID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodStart time.Time `gorm:"type:timestamptz;not null"`
	PeriodEnd   time.Time `gorm:"type:timestamptz;not null"`

	BalanceAmount decimal.Decimal                `gorm:"type:decimal(18,2);not null"`
	Status        settlement.MerchantBatchStatus `gorm:"type:varchar(20);not null;index"`

	Transactions []SettlementTransactionModel `gorm:"foreignKey:BatchID"`

	CompletedAt *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (SettlementBatchModel) TableName() string {
	return "settlement_batches"
}

// ToDomain converts the persistence model to a domain SettlementBatch.
func (m *SettlementBatchModel) ToDomain() *settlement.SettlementBatch {
	b := &settlement.SettlementBatch{
		Code:          m.Code,
		ShopID:        m.ShopID,
		PeriodStart:   m.PeriodStart,
		PeriodEnd:     m.PeriodEnd,
		BalanceAmount: valueobject.NewVND(m.BalanceAmount),
		Status:        m.Status,
		CompletedAt:   m.CompletedAt,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)

	b.Transactions = make([]settlement.SettlementTransaction, len(m.Transactions))
	for i := range m.Transactions {
		b.Transactions[i] = *m.Transactions[i].ToDomain()
	}
	return b
}

// FromDomain populates the persistence model from a domain SettlementBatch.
func (m *SettlementBatchModel) FromDomain(b *settlement.SettlementBatch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Code = b.Code
	m.ShopID = b.ShopID
	m.PeriodStart = b.PeriodStart
	m.PeriodEnd = b.PeriodEnd
	m.BalanceAmount = b.BalanceAmount.Amount()
	m.Status = b.Status
	m.CompletedAt = b.CompletedAt

	m.Transactions = make([]SettlementTransactionModel, len(b.Transactions))
	for i := range b.Transactions {
		m.Transactions[i].FromDomain(&b.Transactions[i])
	}
}

// SettlementBatchModelFromDomain creates a new persistence model from a
// domain SettlementBatch.
func SettlementBatchModelFromDomain(b *settlement.SettlementBatch) *SettlementBatchModel {
	m := &SettlementBatchModel{}
	m.FromDomain(b)
	return m
}

// SettlementTransactionModel is the persistence model for one online payment
// attempt against a merchant batch.
type SettlementTransactionModel struct {
	BaseModel
	BatchID    uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Code       string                       `gorm:"type:varchar(20);not null;uniqueIndex"`
	Amount     decimal.Decimal              `gorm:"type:decimal(18,2);not null"`
	Status     settlement.TransactionStatus `gorm:"type:varchar(20);not null"`
	GatewayRef string                       `gorm:"type:varchar(100)"`
	ResolvedAt *time.Time                   `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (SettlementTransactionModel) TableName() string {
	return "settlement_transactions"
}

// ToDomain converts the persistence model to a domain SettlementTransaction.
func (m *SettlementTransactionModel) ToDomain() *settlement.SettlementTransaction {
	return &settlement.SettlementTransaction{
		BaseEntity: m.BaseModel.ToDomain(),
		BatchID:    m.BatchID,
		Code:       m.Code,
		Amount:     valueobject.NewVND(m.Amount),
		Status:     m.Status,
		GatewayRef: m.GatewayRef,
		ResolvedAt: m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain
// SettlementTransaction.
func (m *SettlementTransactionModel) FromDomain(t *settlement.SettlementTransaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.BatchID = t.BatchID
	m.Code = t.Code
	m.Amount = t.Amount.Amount()
	m.Status = t.Status
	m.GatewayRef = t.GatewayRef
	m.ResolvedAt = t.ResolvedAt
}
