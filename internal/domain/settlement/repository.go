package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// PaymentSubmissionRepository persists shipper cash submissions
type PaymentSubmissionRepository interface {
	// FindByID finds a submission by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentSubmission, error)

	// FindActiveByOrder returns the order's unresolved submission, or
	// ErrNotFound
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*PaymentSubmission, error)

	// FindPendingByShipper returns a shipper's PENDING submissions
	FindPendingByShipper(ctx context.Context, shipperID uuid.UUID) ([]PaymentSubmission, error)

	// LockPendingByIDs loads the given submissions with row locks held for
	// the rest of the transaction, returning only rows still PENDING and
	// owned by the shipper. Used to serialize concurrent batch creation.
	LockPendingByIDs(ctx context.Context, shipperID uuid.UUID, ids []uuid.UUID) ([]PaymentSubmission, error)

	// FindByBatch returns all member submissions of a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]PaymentSubmission, error)

	// Save creates or updates a submission
	Save(ctx context.Context, s *PaymentSubmission) error

	// SaveAll persists several submissions in one call
	SaveAll(ctx context.Context, subs []*PaymentSubmission) error
}

// SubmissionBatchRepository persists shipper-side batches
type SubmissionBatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SubmissionBatch, error)

	// FindByCode finds a batch by its code
	FindByCode(ctx context.Context, code string) (*SubmissionBatch, error)

	// FindByShipper finds a shipper's batches
	FindByShipper(ctx context.Context, shipperID uuid.UUID, filter shared.Filter) ([]SubmissionBatch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, b *SubmissionBatch) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, b *SubmissionBatch) error
}

// SettlementBatchRepository persists merchant-side batches
type SettlementBatchRepository interface {
	// FindByID finds a batch with its transactions
	FindByID(ctx context.Context, id uuid.UUID) (*SettlementBatch, error)

	// FindByCode finds a batch by its code
	FindByCode(ctx context.Context, code string) (*SettlementBatch, error)

	// FindByTransactionCode finds the batch holding a transaction
	FindByTransactionCode(ctx context.Context, txCode string) (*SettlementBatch, error)

	// FindByShop finds a shop's batches
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]SettlementBatch, error)

	// FindByPeriod finds batches overlapping the window
	FindByPeriod(ctx context.Context, from, to time.Time, filter shared.Filter) ([]SettlementBatch, error)

	// Save creates or updates a batch with its transactions
	Save(ctx context.Context, b *SettlementBatch) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, b *SettlementBatch) error
}
