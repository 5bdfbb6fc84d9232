package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/settlement"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

const batchCodePrefix = "SB"

// BatchService handles shipper cash submissions and their reconciliation
// batches
type BatchService struct {
	scope    TransactionScope
	notifier notify.Sink
	logger   *zap.Logger
}

// NewBatchService creates a new BatchService
func NewBatchService(scope TransactionScope, notifier notify.Sink, logger *zap.Logger) *BatchService {
	return &BatchService{
		scope:    scope,
		notifier: notifier,
		logger:   logger,
	}
}

// expectedHandover is the cash the system expects for one delivered order:
// the COD amount plus, when the sender pays on handover, the unpaid fee.
func expectedHandover(o *order.Order) valueobject.Money {
	expected := valueobject.ZeroVND()
	if o.CODAmount.IsPositive() {
		expected = expected.MustAdd(o.CODAmount)
	}
	if o.Payer == order.PayerCustomer && o.PaymentStatus == order.PaymentUnpaid {
		expected = expected.MustAdd(o.TotalFee)
	}
	return expected
}

// CreateSubmission opens a pending submission for the cash of one delivered
// order. The expected amount is derived from the order; the shipper may
// declare a different actual amount.
func (s *BatchService) CreateSubmission(ctx context.Context, req CreateSubmissionRequest) (*SubmissionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "create_submission")
	defer span.End()

	var sub *settlement.PaymentSubmission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if o.Status != order.StatusDelivered {
			return shared.NewDomainError("INVALID_STATE", "Submissions are for delivered orders")
		}
		if o.CODAmount.IsPositive() && o.CODStatus != order.CODCollected {
			return shared.NewDomainError("INVALID_STATE", "COD has not been collected for this order")
		}

		if _, err := repos.Submissions().FindActiveByOrder(ctx, req.OrderID); err == nil {
			return shared.ErrAlreadyExists
		} else if !isNotFound(err) {
			return err
		}

		sub, err = settlement.NewPaymentSubmission(req.OrderID, req.ShipperID, expectedHandover(o))
		if err != nil {
			return err
		}
		if req.ActualAmount != nil {
			if err := sub.DeclareActual(valueobject.NewVND(*req.ActualAmount)); err != nil {
				return err
			}
		}
		return repos.Submissions().Save(ctx, sub)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, sub.OrderID.String(),
		telemetry.SpanAttrAmount, sub.SystemAmount.Amount().String(),
	)
	s.logger.Info("Payment submission created",
		zap.String("submission_id", sub.ID.String()),
		zap.String("order_id", sub.OrderID.String()),
		zap.String("shipper_id", sub.ShipperID.String()),
	)

	response := ToSubmissionResponse(sub)
	return &response, nil
}

// DeclareActual corrects the declared cash on a pending submission
func (s *BatchService) DeclareActual(ctx context.Context, submissionID uuid.UUID, req DeclareActualRequest) (*SubmissionResponse, error) {
	var sub *settlement.PaymentSubmission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sub, err = repos.Submissions().FindByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if err := sub.DeclareActual(valueobject.NewVND(req.Amount)); err != nil {
			return err
		}
		return repos.Submissions().Save(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	response := ToSubmissionResponse(sub)
	return &response, nil
}

// CreateBatch claims the given pending submissions into a new batch. The
// rows are locked inside the transaction, and the request fails when any of
// them is missing, already claimed, or owned by another shipper.
func (s *BatchService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "create_batch")
	defer span.End()

	var batch *settlement.SubmissionBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		locked, err := repos.Submissions().LockPendingByIDs(ctx, req.ShipperID, req.SubmissionIDs)
		if err != nil {
			return err
		}
		if len(locked) != len(req.SubmissionIDs) {
			return shared.NewDomainError("SUBMISSION_UNAVAILABLE",
				fmt.Sprintf("Only %d of %d submissions are pending for this shipper", len(locked), len(req.SubmissionIDs)))
		}

		code, err := generateCode(ctx, batchCodePrefix, func(ctx context.Context, code string) (bool, error) {
			_, err := repos.SubmissionBatches().FindByCode(ctx, code)
			if err != nil {
				if isNotFound(err) {
					return false, nil
				}
				return false, err
			}
			return true, nil
		})
		if err != nil {
			return err
		}

		members := make([]*settlement.PaymentSubmission, len(locked))
		for i := range locked {
			members[i] = &locked[i]
		}

		batch, err = settlement.NewSubmissionBatch(code, req.ShipperID, members)
		if err != nil {
			return err
		}
		if err := repos.Submissions().SaveAll(ctx, members); err != nil {
			return err
		}
		return repos.SubmissionBatches().Save(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, batch.ID.String(),
		telemetry.SpanAttrBatchCode, batch.Code,
	)
	s.logger.Info("Submission batch created",
		zap.String("batch_id", batch.ID.String()),
		zap.String("code", batch.Code),
		zap.Int("members", batch.MemberCount),
	)

	response := ToBatchResponse(batch)
	return &response, nil
}

// StartChecking moves a batch under review
func (s *BatchService) StartChecking(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	var batch *settlement.SubmissionBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.SubmissionBatches().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if err := batch.StartChecking(); err != nil {
			return err
		}
		return repos.SubmissionBatches().SaveWithLock(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// AdjustSubmission resolves one in-batch submission with a corrected amount
// and refreshes the batch total
func (s *BatchService) AdjustSubmission(ctx context.Context, submissionID uuid.UUID, req AdjustSubmissionRequest) (*SubmissionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "adjust_submission")
	defer span.End()

	var sub *settlement.PaymentSubmission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sub, err = repos.Submissions().FindByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if sub.BatchID == nil {
			return shared.NewDomainError("INVALID_STATE", "Submission is not in a batch")
		}
		if err := sub.Adjust(valueobject.NewVND(req.Amount), req.Note); err != nil {
			return err
		}
		if err := repos.Submissions().Save(ctx, sub); err != nil {
			return err
		}

		batch, err := repos.SubmissionBatches().FindByID(ctx, *sub.BatchID)
		if err != nil {
			return err
		}
		members, err := s.batchMembers(ctx, repos, batch.ID)
		if err != nil {
			return err
		}
		if err := batch.ApplyAdjustment(members); err != nil {
			return err
		}
		return repos.SubmissionBatches().SaveWithLock(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToSubmissionResponse(sub)
	return &response, nil
}

// ResolveBatch closes a batch. Completion settles every member's order in
// the same transaction; cancellation releases the members back to the
// pending pool.
func (s *BatchService) ResolveBatch(ctx context.Context, batchID uuid.UUID, req ResolveBatchRequest) (*BatchResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "resolve_batch")
	defer span.End()

	var batch *settlement.SubmissionBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.SubmissionBatches().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		members, err := s.batchMembers(ctx, repos, batch.ID)
		if err != nil {
			return err
		}

		switch req.Outcome {
		case OutcomeCompleted:
			if err := batch.Complete(members); err != nil {
				return err
			}
			now := time.Now()
			for _, m := range members {
				o, err := repos.Orders().FindByID(ctx, m.OrderID)
				if err != nil {
					return err
				}
				if err := o.SettlePayment(now); err != nil {
					return err
				}
				if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
					return err
				}
			}
		case OutcomePartial:
			if err := batch.MarkPartial(members); err != nil {
				return err
			}
		case OutcomeCancelled:
			if err := batch.Cancel(members); err != nil {
				return err
			}
		default:
			return shared.NewDomainError("INVALID_INPUT", "Unknown batch outcome")
		}

		if err := repos.Submissions().SaveAll(ctx, members); err != nil {
			return err
		}
		return repos.SubmissionBatches().SaveWithLock(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, batch.ID.String(),
		telemetry.SpanAttrBatchCode, batch.Code,
	)
	s.logger.Info("Submission batch resolved",
		zap.String("batch_id", batch.ID.String()),
		zap.String("code", batch.Code),
		zap.String("outcome", string(req.Outcome)),
	)

	if req.Outcome == OutcomeCompleted {
		s.notifier.Notify(ctx, notify.Notification{
			RecipientID: batch.ShipperID,
			Title:       "Settlement batch completed",
			Message:     fmt.Sprintf("Batch %s has been reconciled", batch.Code),
			Category:    notify.CategorySettlement,
			ReferenceID: batch.ID,
		})
	}

	response := ToBatchResponse(batch)
	return &response, nil
}

// batchMembers loads a batch's submissions as pointers for domain calls
func (s *BatchService) batchMembers(ctx context.Context, repos TransactionalRepositories, batchID uuid.UUID) ([]*settlement.PaymentSubmission, error) {
	rows, err := repos.Submissions().FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	members := make([]*settlement.PaymentSubmission, len(rows))
	for i := range rows {
		members[i] = &rows[i]
	}
	return members, nil
}

// GetBatch retrieves a shipper batch
func (s *BatchService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	var batch *settlement.SubmissionBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.SubmissionBatches().FindByID(ctx, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// ListBatchSubmissions lists the member submissions of a batch
func (s *BatchService) ListBatchSubmissions(ctx context.Context, batchID uuid.UUID) ([]SubmissionResponse, error) {
	var rows []settlement.PaymentSubmission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.SubmissionBatches().FindByID(ctx, batchID); err != nil {
			return err
		}
		var err error
		rows, err = repos.Submissions().FindByBatch(ctx, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]SubmissionResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, ToSubmissionResponse(&rows[i]))
	}
	return responses, nil
}

// ListPendingSubmissions lists a shipper's unclaimed submissions
func (s *BatchService) ListPendingSubmissions(ctx context.Context, shipperID uuid.UUID) ([]SubmissionResponse, error) {
	var rows []settlement.PaymentSubmission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rows, err = repos.Submissions().FindPendingByShipper(ctx, shipperID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]SubmissionResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, ToSubmissionResponse(&rows[i]))
	}
	return responses, nil
}

// ListBatchesByShipper lists a shipper's batches
func (s *BatchService) ListBatchesByShipper(ctx context.Context, shipperID uuid.UUID, filter ListBatchesFilter) ([]BatchResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	var batches []settlement.SubmissionBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, err = repos.SubmissionBatches().FindByShipper(ctx, shipperID, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, ToBatchResponse(&batches[i]))
	}
	return responses, nil
}
