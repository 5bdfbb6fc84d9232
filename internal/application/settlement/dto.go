package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/settlement"
)

// CreateSubmissionRequest records the cash one shipper hands over for an order
type CreateSubmissionRequest struct {
	OrderID      uuid.UUID        `json:"order_id" binding:"required"`
	ShipperID    uuid.UUID        `json:"shipper_id" binding:"required"`
	ActualAmount *decimal.Decimal `json:"actual_amount"`
}

// DeclareActualRequest corrects the declared cash on a pending submission
type DeclareActualRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreateBatchRequest groups a shipper's pending submissions for reconciliation
type CreateBatchRequest struct {
	ShipperID     uuid.UUID   `json:"shipper_id" binding:"required"`
	SubmissionIDs []uuid.UUID `json:"submission_ids" binding:"required,min=1"`
}

// AdjustSubmissionRequest resolves one submission with a corrected amount
type AdjustSubmissionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note" binding:"required,max=500"`
}

// BatchOutcome is the requested resolution of a shipper batch
type BatchOutcome string

const (
	OutcomeCompleted BatchOutcome = "COMPLETED"
	OutcomePartial   BatchOutcome = "PARTIAL"
	OutcomeCancelled BatchOutcome = "CANCELLED"
)

// ResolveBatchRequest closes a shipper batch with the given outcome
type ResolveBatchRequest struct {
	Outcome BatchOutcome `json:"outcome" binding:"required"`
}

// ListBatchesFilter narrows batch listings
type ListBatchesFilter struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// SubmissionResponse represents a payment submission in API responses
type SubmissionResponse struct {
	ID             uuid.UUID                   `json:"id"`
	OrderID        uuid.UUID                   `json:"order_id"`
	ShipperID      uuid.UUID                   `json:"shipper_id"`
	SystemAmount   decimal.Decimal             `json:"system_amount"`
	ActualAmount   decimal.Decimal             `json:"actual_amount"`
	Status         settlement.SubmissionStatus `json:"status"`
	BatchID        *uuid.UUID                  `json:"batch_id,omitempty"`
	AdjustmentNote string                      `json:"adjustment_note,omitempty"`
	ResolvedAt     *time.Time                  `json:"resolved_at,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// BatchResponse represents a shipper batch in API responses
type BatchResponse struct {
	ID                uuid.UUID              `json:"id"`
	Code              string                 `json:"code"`
	ShipperID         uuid.UUID              `json:"shipper_id"`
	Status            settlement.BatchStatus `json:"status"`
	TotalSystemAmount decimal.Decimal        `json:"total_system_amount"`
	TotalActualAmount decimal.Decimal        `json:"total_actual_amount"`
	Discrepancy       decimal.Decimal        `json:"discrepancy"`
	MemberCount       int                    `json:"member_count"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`
	CancelledAt       *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// CreateMerchantBatchRequest opens a settlement batch for a shop's period
type CreateMerchantBatchRequest struct {
	ShopID      uuid.UUID `json:"shop_id" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
}

// CreatePaymentRequest opens an online payment attempt against a batch
type CreatePaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	ClientIP string          `json:"-"`
}

// PaymentAttemptResponse carries the gateway redirect for one attempt
type PaymentAttemptResponse struct {
	TransactionCode string          `json:"transaction_code"`
	PaymentURL      string          `json:"payment_url"`
	Amount          decimal.Decimal `json:"amount"`
}

// TransactionResponse represents one payment attempt in API responses
type TransactionResponse struct {
	Code       string                       `json:"code"`
	Amount     decimal.Decimal              `json:"amount"`
	Status     settlement.TransactionStatus `json:"status"`
	GatewayRef string                       `json:"gateway_ref,omitempty"`
	ResolvedAt *time.Time                   `json:"resolved_at,omitempty"`
}

// MerchantBatchResponse represents a merchant batch in API responses
type MerchantBatchResponse struct {
	ID            uuid.UUID                      `json:"id"`
	Code          string                         `json:"code"`
	ShopID        uuid.UUID                      `json:"shop_id"`
	PeriodStart   time.Time                      `json:"period_start"`
	PeriodEnd     time.Time                      `json:"period_end"`
	BalanceAmount decimal.Decimal                `json:"balance_amount"`
	RemainingOwed decimal.Decimal                `json:"remaining_owed"`
	Status        settlement.MerchantBatchStatus `json:"status"`
	Transactions  []TransactionResponse          `json:"transactions"`
	CompletedAt   *time.Time                     `json:"completed_at,omitempty"`
	CreatedAt     time.Time                      `json:"created_at"`
}

// CallbackResponse is the acknowledgement of a gateway callback
type CallbackResponse struct {
	TransactionCode string `json:"transaction_code"`
	Success         bool   `json:"success"`
	// Duplicate marks a callback that was already processed and ignored
	Duplicate   bool                           `json:"duplicate"`
	BatchStatus settlement.MerchantBatchStatus `json:"batch_status,omitempty"`
}

// ToSubmissionResponse converts a domain submission to a response DTO
func ToSubmissionResponse(s *settlement.PaymentSubmission) SubmissionResponse {
	return SubmissionResponse{
		ID:             s.ID,
		OrderID:        s.OrderID,
		ShipperID:      s.ShipperID,
		SystemAmount:   s.SystemAmount.Amount(),
		ActualAmount:   s.ActualAmount.Amount(),
		Status:         s.Status,
		BatchID:        s.BatchID,
		AdjustmentNote: s.AdjustmentNote,
		ResolvedAt:     s.ResolvedAt,
		CreatedAt:      s.CreatedAt,
	}
}

// ToBatchResponse converts a domain shipper batch to a response DTO
func ToBatchResponse(b *settlement.SubmissionBatch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		Code:              b.Code,
		ShipperID:         b.ShipperID,
		Status:            b.Status,
		TotalSystemAmount: b.TotalSystemAmount.Amount(),
		TotalActualAmount: b.TotalActualAmount.Amount(),
		Discrepancy:       b.Discrepancy().Amount(),
		MemberCount:       b.MemberCount,
		CompletedAt:       b.CompletedAt,
		CancelledAt:       b.CancelledAt,
		CreatedAt:         b.CreatedAt,
	}
}

// ToMerchantBatchResponse converts a domain merchant batch to a response DTO
func ToMerchantBatchResponse(b *settlement.SettlementBatch) MerchantBatchResponse {
	txs := make([]TransactionResponse, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, TransactionResponse{
			Code:       tx.Code,
			Amount:     tx.Amount.Amount(),
			Status:     tx.Status,
			GatewayRef: tx.GatewayRef,
			ResolvedAt: tx.ResolvedAt,
		})
	}
	return MerchantBatchResponse{
		ID:            b.ID,
		Code:          b.Code,
		ShopID:        b.ShopID,
		PeriodStart:   b.PeriodStart,
		PeriodEnd:     b.PeriodEnd,
		BalanceAmount: b.BalanceAmount.Amount(),
		RemainingOwed: b.RemainingOwed().Amount(),
		Status:        b.Status,
		Transactions:  txs,
		CompletedAt:   b.CompletedAt,
		CreatedAt:     b.CreatedAt,
	}
}
