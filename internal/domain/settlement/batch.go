package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// BatchStatus is the lifecycle status of a shipper-side submission batch
type BatchStatus string

const (
	BatchPending   BatchStatus = "PENDING"
	BatchChecking  BatchStatus = "CHECKING"
	BatchPartial   BatchStatus = "PARTIAL"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchCancelled BatchStatus = "CANCELLED"
)

// IsTerminal reports whether the batch can no longer change
func (s BatchStatus) IsTerminal() bool {
	return s == BatchCompleted || s == BatchCancelled
}

// SubmissionBatch groups the pending submissions of one shipper for
// reconciliation. Totals are maintained at write time and always equal the
// sum over current members.
type SubmissionBatch struct {
	shared.BaseAggregateRoot
	Code      string
	ShipperID uuid.UUID
	Status    BatchStatus

	TotalSystemAmount valueobject.Money
	TotalActualAmount valueobject.Money
	MemberCount       int

	CompletedAt *time.Time
	CancelledAt *time.Time
}

// NewSubmissionBatch claims the given pending submissions for one shipper.
// Every member must be PENDING and belong to the shipper; the rows are locked
// by the caller before this runs so that two concurrent batch creations
// cannot claim the same submission.
func NewSubmissionBatch(code string, shipperID uuid.UUID, members []*PaymentSubmission) (*SubmissionBatch, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Batch code cannot be empty")
	}
	if shipperID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPPER", "Shipper ID cannot be empty")
	}
	if len(members) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "A batch requires at least one submission")
	}

	b := &SubmissionBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		ShipperID:         shipperID,
		Status:            BatchPending,
		TotalSystemAmount: valueobject.ZeroVND(),
		TotalActualAmount: valueobject.ZeroVND(),
	}

	for _, m := range members {
		if m.ShipperID != shipperID {
			return nil, shared.NewDomainError("SHIPPER_MISMATCH", "Submission belongs to another shipper")
		}
		if err := m.ClaimIntoBatch(b.ID); err != nil {
			return nil, err
		}
		b.TotalSystemAmount = b.TotalSystemAmount.MustAdd(m.SystemAmount)
		b.TotalActualAmount = b.TotalActualAmount.MustAdd(m.ActualAmount)
		b.MemberCount++
	}

	return b, nil
}

// StartChecking moves the batch under review
func (b *SubmissionBatch) StartChecking() error {
	if b.Status != BatchPending {
		return shared.NewDomainError("INVALID_STATE", "Only a pending batch can start checking")
	}
	b.Status = BatchChecking
	b.UpdatedAt = time.Now()
	return nil
}

// MarkPartial resolves the batch with discrepancies: every unresolved member
// is marked MISMATCHED.
func (b *SubmissionBatch) MarkPartial(members []*PaymentSubmission) error {
	if b.Status != BatchPending && b.Status != BatchChecking {
		return shared.NewDomainError("INVALID_STATE", "Batch cannot move to partial from its current status")
	}
	for _, m := range members {
		if m.Status.IsResolved() {
			continue
		}
		if err := m.MarkMismatched(); err != nil {
			return err
		}
	}
	b.Status = BatchPartial
	b.UpdatedAt = time.Now()
	return nil
}

// Complete resolves the batch: every member not already ADJUSTED is marked
// MATCHED. The caller propagates the settlement to each member's order in
// the same transaction; none of it may land unless all of it does.
func (b *SubmissionBatch) Complete(members []*PaymentSubmission) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Batch is already closed")
	}
	if len(members) != b.MemberCount {
		return shared.NewDomainError("INVALID_INPUT", "Member set does not match the batch")
	}

	for _, m := range members {
		if m.Status == SubmissionAdjusted {
			continue
		}
		if m.Status == SubmissionMatched {
			continue
		}
		if m.Status == SubmissionMismatched {
			// Mismatched members stay mismatched; completion still settles
			// their orders with the adjusted cash position.
			continue
		}
		if err := m.MarkMatched(); err != nil {
			return err
		}
	}

	now := time.Now()
	b.Status = BatchCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel unclaims every member back to PENDING and closes the batch
func (b *SubmissionBatch) Cancel(members []*PaymentSubmission) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Batch is already closed")
	}
	for _, m := range members {
		if m.Status != SubmissionInBatch {
			continue
		}
		if err := m.ReleaseFromBatch(); err != nil {
			return err
		}
	}
	now := time.Now()
	b.Status = BatchCancelled
	b.CancelledAt = &now
	b.MemberCount = 0
	b.TotalSystemAmount = valueobject.ZeroVND()
	b.TotalActualAmount = valueobject.ZeroVND()
	b.UpdatedAt = now
	return nil
}

// ApplyAdjustment refreshes the actual-amount total after a member was
// adjusted
func (b *SubmissionBatch) ApplyAdjustment(members []*PaymentSubmission) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Batch is already closed")
	}
	total := valueobject.ZeroVND()
	for _, m := range members {
		total = total.MustAdd(m.ActualAmount)
	}
	b.TotalActualAmount = total
	b.UpdatedAt = time.Now()
	return nil
}

// Discrepancy returns totalActual minus totalSystem
func (b *SubmissionBatch) Discrepancy() valueobject.Money {
	return b.TotalActualAmount.MustSubtract(b.TotalSystemAmount)
}
