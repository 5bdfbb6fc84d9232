package settlement

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/domain/settlement"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

type fakeBalanceCalculator struct {
	balance valueobject.Money
	err     error
}

func (c *fakeBalanceCalculator) Balance(ctx context.Context, shopID uuid.UUID, periodStart, periodEnd time.Time) (valueobject.Money, error) {
	if c.err != nil {
		return valueobject.ZeroVND(), c.err
	}
	return c.balance, nil
}

// fakeGateway signs nothing; it trusts the params it is handed and echoes
// them back as the verified outcome
type fakeGateway struct {
	urls      []settlement.PaymentURLRequest
	verifyErr error
}

func (g *fakeGateway) CreatePaymentURL(ctx context.Context, req settlement.PaymentURLRequest) (string, error) {
	g.urls = append(g.urls, req)
	return fmt.Sprintf("https://pay.example.com/checkout?txn=%s", req.TransactionCode), nil
}

func (g *fakeGateway) VerifyCallback(params map[string]string) (*settlement.CallbackResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &settlement.CallbackResult{
		TransactionCode: params["txn_ref"],
		Success:         params["response_code"] == "00",
		GatewayRef:      params["gateway_ref"],
		ResponseCode:    params["response_code"],
	}, nil
}

type fakeIdempotencyStore struct {
	seen map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	if s.seen[reference] {
		return false, nil
	}
	s.seen[reference] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(ctx context.Context, reference string) (bool, error) {
	return s.seen[reference], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

type merchantFixture struct {
	service  *MerchantService
	batches  *fakeMerchantBatchRepo
	balances *fakeBalanceCalculator
	gateway  *fakeGateway
	sink     *recordingSink

	shopID uuid.UUID
}

func newMerchantFixture(t *testing.T) *merchantFixture {
	t.Helper()

	submissions := newFakeSubmissionRepo()
	batches := newFakeBatchRepo()
	merchantBatches := newFakeMerchantBatchRepo()
	orders := newFakeOrderRepo()

	balances := &fakeBalanceCalculator{balance: valueobject.NewVNDFromInt(-500000)}
	gateway := &fakeGateway{}
	sink := &recordingSink{}

	service := NewMerchantService(
		NewNoOpTransactionScope(submissions, batches, merchantBatches, orders),
		balances,
		gateway,
		newFakeIdempotencyStore(),
		sink,
		zap.NewNop(),
	)
	return &merchantFixture{
		service:  service,
		batches:  merchantBatches,
		balances: balances,
		gateway:  gateway,
		sink:     sink,
		shopID:   uuid.New(),
	}
}

func (f *merchantFixture) createBatch(t *testing.T) *MerchantBatchResponse {
	t.Helper()
	resp, err := f.service.CreateBatch(context.Background(), CreateMerchantBatchRequest{
		ShopID:      f.shopID,
		PeriodStart: time.Now().AddDate(0, -1, 0),
		PeriodEnd:   time.Now(),
	})
	require.NoError(t, err)
	return resp
}

func (f *merchantFixture) createPayment(t *testing.T, batchID uuid.UUID, amount int64) *PaymentAttemptResponse {
	t.Helper()
	resp, err := f.service.CreatePayment(context.Background(), batchID, CreatePaymentRequest{
		Amount:   decimal.NewFromInt(amount),
		ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)
	return resp
}

func (f *merchantFixture) callback(t *testing.T, txCode, responseCode string) (*CallbackResponse, error) {
	t.Helper()
	return f.service.HandleCallback(context.Background(), map[string]string{
		"txn_ref":       txCode,
		"response_code": responseCode,
		"gateway_ref":   "GW-" + txCode,
	})
}

func TestMerchantService_CreateBatch(t *testing.T) {
	f := newMerchantFixture(t)

	resp := f.createBatch(t)

	assert.Regexp(t, regexp.MustCompile(`^MB\d{6}\d{6}$`), resp.Code)
	assert.Equal(t, settlement.MerchantBatchPending, resp.Status)
	assert.True(t, resp.BalanceAmount.Equal(decimal.NewFromInt(-500000)))
	assert.True(t, resp.RemainingOwed.Equal(decimal.NewFromInt(500000)))
}

func TestMerchantService_CreateBatch_NothingOwed(t *testing.T) {
	f := newMerchantFixture(t)
	f.balances.balance = valueobject.NewVNDFromInt(120000)

	resp := f.createBatch(t)

	assert.True(t, resp.RemainingOwed.IsZero())
}

func TestMerchantService_CreatePayment(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)

	resp := f.createPayment(t, batch.ID, 200000)

	assert.Regexp(t, regexp.MustCompile(`^TXN\d{6}\d{6}$`), resp.TransactionCode)
	assert.Contains(t, resp.PaymentURL, resp.TransactionCode)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(200000)))

	require.Len(t, f.gateway.urls, 1)
	assert.Equal(t, batch.Code, f.gateway.urls[0].BatchCode)
	assert.Equal(t, "203.0.113.7", f.gateway.urls[0].ClientIP)

	stored, err := f.service.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, stored.Transactions, 1)
	assert.Equal(t, settlement.TransactionPending, stored.Transactions[0].Status)
}

func TestMerchantService_CreatePayment_ExceedsOwed(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)

	_, err := f.service.CreatePayment(context.Background(), batch.ID, CreatePaymentRequest{
		Amount: decimal.NewFromInt(600000),
	})

	assert.ErrorIs(t, err, shared.ErrAmountExceedsOwed)
}

func TestMerchantService_HandleCallback_PartialThenCompleted(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)

	first := f.createPayment(t, batch.ID, 200000)
	resp, err := f.callback(t, first.TransactionCode, "00")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.Duplicate)
	assert.Equal(t, settlement.MerchantBatchPartial, resp.BatchStatus)

	stored, err := f.service.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingOwed.Equal(decimal.NewFromInt(300000)))
	assert.Empty(t, f.sink.sent)

	second := f.createPayment(t, batch.ID, 300000)
	resp, err = f.callback(t, second.TransactionCode, "00")
	require.NoError(t, err)
	assert.Equal(t, settlement.MerchantBatchCompleted, resp.BatchStatus)

	stored, err = f.service.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingOwed.IsZero())
	require.NotNil(t, stored.CompletedAt)

	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, f.shopID, f.sink.sent[0].RecipientID)
	assert.Equal(t, notify.CategorySettlement, f.sink.sent[0].Category)
}

func TestMerchantService_HandleCallback_Failure(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)
	payment := f.createPayment(t, batch.ID, 200000)

	resp, err := f.callback(t, payment.TransactionCode, "24")

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, settlement.MerchantBatchFailed, resp.BatchStatus)

	// A failed attempt does not consume the owed amount
	stored, err := f.service.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingOwed.Equal(decimal.NewFromInt(500000)))
	require.Len(t, stored.Transactions, 1)
	assert.Equal(t, settlement.TransactionFailed, stored.Transactions[0].Status)
}

func TestMerchantService_HandleCallback_RetryAfterFailure(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)

	failed := f.createPayment(t, batch.ID, 200000)
	_, err := f.callback(t, failed.TransactionCode, "24")
	require.NoError(t, err)

	retry := f.createPayment(t, batch.ID, 500000)
	resp, err := f.callback(t, retry.TransactionCode, "00")
	require.NoError(t, err)
	assert.Equal(t, settlement.MerchantBatchCompleted, resp.BatchStatus)
}

func TestMerchantService_HandleCallback_Duplicate(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)
	payment := f.createPayment(t, batch.ID, 200000)

	_, err := f.callback(t, payment.TransactionCode, "00")
	require.NoError(t, err)

	resp, err := f.callback(t, payment.TransactionCode, "00")
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)

	stored, err := f.service.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingOwed.Equal(decimal.NewFromInt(300000)))
}

func TestMerchantService_HandleCallback_FailedApplyNotDuplicate(t *testing.T) {
	f := newMerchantFixture(t)
	batch := f.createBatch(t)
	payment := f.createPayment(t, batch.ID, 500000)

	f.batches.findTxErr = fmt.Errorf("connection reset")
	_, err := f.callback(t, payment.TransactionCode, "00")
	require.Error(t, err)

	f.batches.findTxErr = nil
	resp, err := f.callback(t, payment.TransactionCode, "00")
	require.NoError(t, err)
	assert.False(t, resp.Duplicate)
	assert.Equal(t, settlement.MerchantBatchCompleted, resp.BatchStatus)
}

func TestMerchantService_HandleCallback_BadSignature(t *testing.T) {
	f := newMerchantFixture(t)
	f.gateway.verifyErr = fmt.Errorf("signature mismatch")

	_, err := f.service.HandleCallback(context.Background(), map[string]string{"txn_ref": "TXN000000000000"})

	assert.Error(t, err)
}

func TestMerchantService_HandleCallback_UnknownTransaction(t *testing.T) {
	f := newMerchantFixture(t)

	_, err := f.callback(t, "TXN260830999999", "00")

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMerchantService_ListByShop(t *testing.T) {
	f := newMerchantFixture(t)
	f.createBatch(t)

	list, err := f.service.ListByShop(context.Background(), f.shopID, ListBatchesFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
