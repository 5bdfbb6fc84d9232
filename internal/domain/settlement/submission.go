package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// SubmissionStatus is the lifecycle status of a payment submission
type SubmissionStatus string

const (
	SubmissionPending    SubmissionStatus = "PENDING"
	SubmissionInBatch    SubmissionStatus = "IN_BATCH"
	SubmissionMatched    SubmissionStatus = "MATCHED"
	SubmissionMismatched SubmissionStatus = "MISMATCHED"
	SubmissionAdjusted   SubmissionStatus = "ADJUSTED"
)

// IsResolved reports whether the submission reached a final reconciliation
// outcome
func (s SubmissionStatus) IsResolved() bool {
	switch s {
	case SubmissionMatched, SubmissionMismatched, SubmissionAdjusted:
		return true
	}
	return false
}

// PaymentSubmission records the COD and fee cash one shipper hands over for
// one order. An order has at most one active submission at a time.
type PaymentSubmission struct {
	shared.BaseAggregateRoot
	OrderID   uuid.UUID
	ShipperID uuid.UUID

	// SystemAmount is what the system expects; ActualAmount is what the
	// shipper declares on handover.
	SystemAmount valueobject.Money
	ActualAmount valueobject.Money

	Status  SubmissionStatus
	BatchID *uuid.UUID

	AdjustmentNote string
	ResolvedAt     *time.Time
}

// NewPaymentSubmission creates a pending submission for one order's cash
func NewPaymentSubmission(orderID, shipperID uuid.UUID, systemAmount valueobject.Money) (*PaymentSubmission, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if shipperID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPPER", "Shipper ID cannot be empty")
	}
	if systemAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "System amount cannot be negative")
	}

	return &PaymentSubmission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		ShipperID:         shipperID,
		SystemAmount:      systemAmount,
		ActualAmount:      systemAmount,
		Status:            SubmissionPending,
	}, nil
}

// DeclareActual records the cash amount the shipper actually hands over.
// Only pending submissions accept a declaration.
func (s *PaymentSubmission) DeclareActual(amount valueobject.Money) error {
	if s.Status != SubmissionPending {
		return shared.NewDomainError("INVALID_STATE", "Actual amount can only change while pending")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Actual amount cannot be negative")
	}
	s.ActualAmount = amount
	s.UpdatedAt = time.Now()
	return nil
}

// HasDiscrepancy reports whether the declared cash differs from the expected
// amount
func (s *PaymentSubmission) HasDiscrepancy() bool {
	return !s.ActualAmount.Equals(s.SystemAmount)
}

// ClaimIntoBatch moves the submission into a batch. Only pending submissions
// may be claimed; callers lock the rows first to serialize concurrent claims.
func (s *PaymentSubmission) ClaimIntoBatch(batchID uuid.UUID) error {
	if s.Status != SubmissionPending {
		return shared.NewDomainError("INVALID_STATE", "Only a pending submission can join a batch")
	}
	if batchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	s.Status = SubmissionInBatch
	s.BatchID = &batchID
	s.UpdatedAt = time.Now()
	return nil
}

// ReleaseFromBatch returns the submission to the pending pool when its batch
// is cancelled
func (s *PaymentSubmission) ReleaseFromBatch() error {
	if s.Status != SubmissionInBatch {
		return shared.NewDomainError("INVALID_STATE", "Only an in-batch submission can be released")
	}
	s.Status = SubmissionPending
	s.BatchID = nil
	s.UpdatedAt = time.Now()
	return nil
}

// MarkMatched resolves the submission as reconciled
func (s *PaymentSubmission) MarkMatched() error {
	if s.Status != SubmissionInBatch {
		return shared.NewDomainError("INVALID_STATE", "Only an in-batch submission can be matched")
	}
	now := time.Now()
	s.Status = SubmissionMatched
	s.ResolvedAt = &now
	s.UpdatedAt = now
	return nil
}

// MarkMismatched resolves the submission as carrying a cash discrepancy
func (s *PaymentSubmission) MarkMismatched() error {
	if s.Status != SubmissionInBatch {
		return shared.NewDomainError("INVALID_STATE", "Only an in-batch submission can be mismatched")
	}
	now := time.Now()
	s.Status = SubmissionMismatched
	s.ResolvedAt = &now
	s.UpdatedAt = now
	return nil
}

// Adjust resolves the submission with a manually corrected amount and a note
// explaining the correction
func (s *PaymentSubmission) Adjust(amount valueobject.Money, note string) error {
	if s.Status != SubmissionInBatch && s.Status != SubmissionMismatched {
		return shared.NewDomainError("INVALID_STATE", "Only an in-batch or mismatched submission can be adjusted")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Adjusted amount cannot be negative")
	}
	if note == "" {
		return shared.NewDomainError("INVALID_INPUT", "Adjustment requires a note")
	}
	now := time.Now()
	s.ActualAmount = amount
	s.AdjustmentNote = note
	s.Status = SubmissionAdjusted
	s.ResolvedAt = &now
	s.UpdatedAt = now
	return nil
}
