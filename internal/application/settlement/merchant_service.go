package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/domain/settlement"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

const (
	merchantBatchCodePrefix = "MB"
	transactionCodePrefix   = "TXN"

	// callbackIdempotencyTTL keeps processed callback references long enough
	// to absorb gateway retries.
	callbackIdempotencyTTL = 24 * time.Hour
)

// BalanceCalculator computes a shop's settlement balance over a period.
// Negative means the shop owes the system (collected COD below fees owed),
// positive means the system owes the shop.
type BalanceCalculator interface {
	Balance(ctx context.Context, shopID uuid.UUID, periodStart, periodEnd time.Time) (valueobject.Money, error)
}

// MerchantService handles merchant settlement batches and their online
// payments
type MerchantService struct {
	scope       TransactionScope
	balances    BalanceCalculator
	gateway     settlement.PaymentGateway
	idempotency shared.IdempotencyStore
	notifier    notify.Sink
	logger      *zap.Logger
}

// NewMerchantService creates a new MerchantService
func NewMerchantService(
	scope TransactionScope,
	balances BalanceCalculator,
	gateway settlement.PaymentGateway,
	idempotency shared.IdempotencyStore,
	notifier notify.Sink,
	logger *zap.Logger,
) *MerchantService {
	return &MerchantService{
		scope:       scope,
		balances:    balances,
		gateway:     gateway,
		idempotency: idempotency,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateBatch computes the shop's balance over the period and opens a
// settlement batch for it
func (s *MerchantService) CreateBatch(ctx context.Context, req CreateMerchantBatchRequest) (*MerchantBatchResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "merchant_settlement", "create_batch")
	defer span.End()

	balance, err := s.balances.Balance(ctx, req.ShopID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var batch *settlement.SettlementBatch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		code, err := generateCode(ctx, merchantBatchCodePrefix, func(ctx context.Context, code string) (bool, error) {
			_, err := repos.MerchantBatches().FindByCode(ctx, code)
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

		batch, err = settlement.NewSettlementBatch(code, req.ShopID, req.PeriodStart, req.PeriodEnd, balance)
		if err != nil {
			return err
		}
		return repos.MerchantBatches().Save(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, batch.ID.String(),
		telemetry.SpanAttrBatchCode, batch.Code,
		telemetry.SpanAttrAmount, batch.BalanceAmount.Amount().String(),
	)
	s.logger.Info("Merchant settlement batch created",
		zap.String("batch_id", batch.ID.String()),
		zap.String("code", batch.Code),
		zap.String("shop_id", batch.ShopID.String()),
		zap.String("balance", batch.BalanceAmount.Amount().String()),
	)

	response := ToMerchantBatchResponse(batch)
	return &response, nil
}

// CreatePayment opens an online payment attempt against the batch's
// remaining balance and returns the gateway redirect URL
func (s *MerchantService) CreatePayment(ctx context.Context, batchID uuid.UUID, req CreatePaymentRequest) (*PaymentAttemptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "merchant_settlement", "create_payment")
	defer span.End()

	amount := valueobject.NewVND(req.Amount)

	var batch *settlement.SettlementBatch
	var txCode string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.MerchantBatches().FindByID(ctx, batchID)
		if err != nil {
			return err
		}

		txCode, err = generateCode(ctx, transactionCodePrefix, func(ctx context.Context, code string) (bool, error) {
			_, err := repos.MerchantBatches().FindByTransactionCode(ctx, code)
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

		if _, err := batch.CreateTransaction(txCode, amount); err != nil {
			return err
		}
		return repos.MerchantBatches().SaveWithLock(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	url, err := s.gateway.CreatePaymentURL(ctx, settlement.PaymentURLRequest{
		TransactionCode: txCode,
		BatchCode:       batch.Code,
		BatchID:         batch.ID,
		Amount:          amount,
		ClientIP:        req.ClientIP,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionCode, txCode,
		telemetry.SpanAttrAmount, amount.Amount().String(),
	)
	s.logger.Info("Settlement payment attempt created",
		zap.String("batch_id", batch.ID.String()),
		zap.String("transaction_code", txCode),
		zap.String("amount", amount.Amount().String()),
	)

	return &PaymentAttemptResponse{
		TransactionCode: txCode,
		PaymentURL:      url,
		Amount:          amount.Amount(),
	}, nil
}

// HandleCallback verifies a gateway callback and applies its outcome to the
// transaction. Replayed callbacks are acknowledged without touching the
// batch.
func (s *MerchantService) HandleCallback(ctx context.Context, params map[string]string) (*CallbackResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "merchant_settlement", "handle_callback")
	defer span.End()

	result, err := s.gateway.VerifyCallback(params)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	reference := fmt.Sprintf("settlement:callback:%s", result.TransactionCode)
	processed, err := s.idempotency.IsProcessed(ctx, reference)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if processed {
		s.logger.Warn("Duplicate gateway callback ignored",
			zap.String("transaction_code", result.TransactionCode),
		)
		return &CallbackResponse{
			TransactionCode: result.TransactionCode,
			Success:         result.Success,
			Duplicate:       true,
		}, nil
	}

	var batch *settlement.SettlementBatch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.MerchantBatches().FindByTransactionCode(ctx, result.TransactionCode)
		if err != nil {
			return err
		}
		if err := batch.ResolveTransaction(result.TransactionCode, result.Success, result.GatewayRef); err != nil {
			return err
		}
		return repos.MerchantBatches().SaveWithLock(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Marked only after the transaction commits so a failed apply leaves
	// the gateway's retry free to deliver the outcome again.
	if _, err := s.idempotency.MarkProcessed(ctx, reference, callbackIdempotencyTTL); err != nil {
		s.logger.Warn("Failed to mark callback as processed",
			zap.String("transaction_code", result.TransactionCode),
			zap.Error(err),
		)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionCode, result.TransactionCode,
		telemetry.SpanAttrBatchCode, batch.Code,
	)
	s.logger.Info("Gateway callback applied",
		zap.String("transaction_code", result.TransactionCode),
		zap.Bool("success", result.Success),
		zap.String("batch_status", string(batch.Status)),
	)

	if batch.Status == settlement.MerchantBatchCompleted {
		s.notifier.Notify(ctx, notify.Notification{
			RecipientID: batch.ShopID,
			Title:       "Settlement completed",
			Message:     fmt.Sprintf("Batch %s has been fully settled", batch.Code),
			Category:    notify.CategorySettlement,
			ReferenceID: batch.ID,
		})
	}

	return &CallbackResponse{
		TransactionCode: result.TransactionCode,
		Success:         result.Success,
		BatchStatus:     batch.Status,
	}, nil
}

// GetBatch retrieves a merchant batch with its transactions
func (s *MerchantService) GetBatch(ctx context.Context, batchID uuid.UUID) (*MerchantBatchResponse, error) {
	var batch *settlement.SettlementBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.MerchantBatches().FindByID(ctx, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToMerchantBatchResponse(batch)
	return &response, nil
}

// ListByShop lists a shop's settlement batches
func (s *MerchantService) ListByShop(ctx context.Context, shopID uuid.UUID, filter ListBatchesFilter) ([]MerchantBatchResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	var batches []settlement.SettlementBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, err = repos.MerchantBatches().FindByShop(ctx, shopID, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]MerchantBatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, ToMerchantBatchResponse(&batches[i]))
	}
	return responses, nil
}
