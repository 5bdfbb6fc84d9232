package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared"
)

type fakePromotionRepo struct {
	promotions map[uuid.UUID]*promotion.Promotion
}

func newFakePromotionRepo() *fakePromotionRepo {
	return &fakePromotionRepo{promotions: make(map[uuid.UUID]*promotion.Promotion)}
}

func (r *fakePromotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	p, ok := r.promotions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePromotionRepo) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	for _, p := range r.promotions {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePromotionRepo) FindActive(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, error) {
	var out []promotion.Promotion
	for _, p := range r.promotions {
		if p.Status == promotion.StatusActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePromotionRepo) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, error) {
	var out []promotion.Promotion
	for _, p := range r.promotions {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePromotionRepo) Save(ctx context.Context, p *promotion.Promotion) error {
	r.promotions[p.ID] = p
	return nil
}

func (r *fakePromotionRepo) SaveWithLock(ctx context.Context, p *promotion.Promotion) error {
	r.promotions[p.ID] = p
	return nil
}

func (r *fakePromotionRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.promotions)), nil
}

type fakeUserPromotionRepo struct {
	links map[string]*promotion.UserPromotion
}

func newFakeUserPromotionRepo() *fakeUserPromotionRepo {
	return &fakeUserPromotionRepo{links: make(map[string]*promotion.UserPromotion)}
}

func linkKey(promotionID, userID uuid.UUID) string {
	return promotionID.String() + "/" + userID.String()
}

func (r *fakeUserPromotionRepo) FindByPromotionAndUser(ctx context.Context, promotionID, userID uuid.UUID) (*promotion.UserPromotion, error) {
	up, ok := r.links[linkKey(promotionID, userID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return up, nil
}

func (r *fakeUserPromotionRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]promotion.UserPromotion, error) {
	var out []promotion.UserPromotion
	for _, up := range r.links {
		if up.UserID == userID {
			out = append(out, *up)
		}
	}
	return out, nil
}

func (r *fakeUserPromotionRepo) Save(ctx context.Context, up *promotion.UserPromotion) error {
	r.links[linkKey(up.PromotionID, up.UserID)] = up
	return nil
}

type fakeUsageReader struct {
	links      *fakeUserPromotionRepo
	orderCount int64
	signupTime time.Time
}

func (r *fakeUsageReader) FindUserPromotion(ctx context.Context, promotionID, userID uuid.UUID) (*promotion.UserPromotion, error) {
	return r.links.FindByPromotionAndUser(ctx, promotionID, userID)
}

func (r *fakeUsageReader) CountUsageOnDate(ctx context.Context, promotionID uuid.UUID, day time.Time) (int, error) {
	return 0, nil
}

func (r *fakeUsageReader) CountUserUsageOnDate(ctx context.Context, promotionID, userID uuid.UUID, day time.Time) (int, error) {
	return 0, nil
}

func (r *fakeUsageReader) CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.orderCount, nil
}

func (r *fakeUsageReader) UserSignupTime(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	return r.signupTime, nil
}

type recordingSink struct {
	sent []notify.Notification
}

func (s *recordingSink) Notify(ctx context.Context, n notify.Notification) {
	s.sent = append(s.sent, n)
}

type promotionFixture struct {
	service    *PromotionService
	promotions *fakePromotionRepo
	userPromos *fakeUserPromotionRepo
	sink       *recordingSink
}

func newPromotionFixture(t *testing.T) *promotionFixture {
	t.Helper()

	promotions := newFakePromotionRepo()
	userPromos := newFakeUserPromotionRepo()
	sink := &recordingSink{}
	usage := &fakeUsageReader{links: userPromos, signupTime: time.Now().AddDate(0, -1, 0)}

	service := NewPromotionService(
		promotions,
		userPromos,
		promotion.NewEvaluator(usage),
		sink,
		zap.NewNop(),
	)
	return &promotionFixture{
		service:    service,
		promotions: promotions,
		userPromos: userPromos,
		sink:       sink,
	}
}

func createRequest() CreatePromotionRequest {
	return CreatePromotionRequest{
		Code:          "WELCOME10",
		Name:          "Welcome discount",
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(24 * time.Hour),
		IsGlobal:      true,
		DiscountType:  promotion.DiscountFixed,
		DiscountValue: decimal.NewFromInt(10000),
	}
}

func TestPromotionService_Create(t *testing.T) {
	f := newPromotionFixture(t)

	resp, err := f.service.Create(context.Background(), createRequest())

	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", resp.Code)
	assert.Equal(t, promotion.StatusActive, resp.Status)
	assert.True(t, resp.IsGlobal)
	assert.Equal(t, 0, resp.UsedCount)
}

func TestPromotionService_Create_DuplicateCode(t *testing.T) {
	f := newPromotionFixture(t)

	_, err := f.service.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), createRequest())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestPromotionService_Create_InvalidDateRange(t *testing.T) {
	f := newPromotionFixture(t)

	req := createRequest()
	req.EndDate = req.StartDate.Add(-time.Hour)

	_, err := f.service.Create(context.Background(), req)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DATE_RANGE", domainErr.Code)
}

func TestPromotionService_Create_WithLimits(t *testing.T) {
	f := newPromotionFixture(t)

	usageLimit := 100
	perUserLimit := 1
	maxDiscount := decimal.NewFromInt(50000)

	req := createRequest()
	req.UsageLimit = &usageLimit
	req.PerUserLimit = &perUserLimit
	req.MaxDiscountAmount = &maxDiscount

	resp, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	stored, err := f.promotions.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.UsageLimit)
	assert.Equal(t, 100, *stored.UsageLimit)
	require.NotNil(t, stored.PerUserLimit)
	assert.Equal(t, 1, *stored.PerUserLimit)
	require.NotNil(t, stored.MaxDiscountAmount)
	assert.True(t, stored.MaxDiscountAmount.Amount().Equal(maxDiscount))
}

func TestPromotionService_DeactivateAndActivate(t *testing.T) {
	f := newPromotionFixture(t)

	created, err := f.service.Create(context.Background(), createRequest())
	require.NoError(t, err)

	resp, err := f.service.Deactivate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, promotion.StatusInactive, resp.Status)

	resp, err = f.service.Activate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, promotion.StatusActive, resp.Status)
}

func TestPromotionService_Grant(t *testing.T) {
	f := newPromotionFixture(t)

	req := createRequest()
	req.IsGlobal = false
	created, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	userID := uuid.New()
	err = f.service.Grant(context.Background(), created.ID, GrantPromotionRequest{UserID: userID})
	require.NoError(t, err)

	link, err := f.userPromos.FindByPromotionAndUser(context.Background(), created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, link.UsedCount)

	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, userID, f.sink.sent[0].RecipientID)
	assert.Equal(t, notify.CategoryPromotion, f.sink.sent[0].Category)
	assert.Equal(t, created.ID, f.sink.sent[0].ReferenceID)
}

func TestPromotionService_Grant_GlobalRejected(t *testing.T) {
	f := newPromotionFixture(t)

	created, err := f.service.Create(context.Background(), createRequest())
	require.NoError(t, err)

	err = f.service.Grant(context.Background(), created.ID, GrantPromotionRequest{UserID: uuid.New()})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestPromotionService_Grant_Duplicate(t *testing.T) {
	f := newPromotionFixture(t)

	req := createRequest()
	req.IsGlobal = false
	created, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, f.service.Grant(context.Background(), created.ID, GrantPromotionRequest{UserID: userID}))

	err = f.service.Grant(context.Background(), created.ID, GrantPromotionRequest{UserID: userID})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestPromotionService_CheckEligibility(t *testing.T) {
	f := newPromotionFixture(t)

	created, err := f.service.Create(context.Background(), createRequest())
	require.NoError(t, err)

	resp, err := f.service.CheckEligibility(context.Background(), created.ID, CheckEligibilityRequest{
		UserID:        uuid.New(),
		OrderValue:    decimal.NewFromInt(200000),
		WeightKg:      decimal.NewFromFloat(1.5),
		ServiceTypeID: uuid.New(),
	})

	require.NoError(t, err)
	assert.True(t, resp.Eligible)
	assert.Empty(t, resp.Reason)
	assert.True(t, resp.Discount.Equal(decimal.NewFromInt(10000)))
}

func TestPromotionService_CheckEligibility_Ended(t *testing.T) {
	f := newPromotionFixture(t)

	req := createRequest()
	req.StartDate = time.Now().Add(-48 * time.Hour)
	req.EndDate = time.Now().Add(-24 * time.Hour)
	promo, err := promotion.NewPromotion(promotion.NewPromotionParams{
		Code:          req.Code,
		Name:          req.Name,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsGlobal:      true,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
	})
	require.NoError(t, err)
	require.NoError(t, f.promotions.Save(context.Background(), promo))

	resp, err := f.service.CheckEligibility(context.Background(), promo.ID, CheckEligibilityRequest{
		UserID:        uuid.New(),
		OrderValue:    decimal.NewFromInt(200000),
		WeightKg:      decimal.NewFromFloat(1.5),
		ServiceTypeID: uuid.New(),
	})

	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.Equal(t, "PROMOTION_ENDED", resp.Reason)
}

func TestPromotionService_CheckEligibility_WeightOutOfRange(t *testing.T) {
	f := newPromotionFixture(t)

	maxWeight := decimal.NewFromInt(2)
	req := createRequest()
	req.MaxWeightKg = &maxWeight
	created, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	resp, err := f.service.CheckEligibility(context.Background(), created.ID, CheckEligibilityRequest{
		UserID:        uuid.New(),
		OrderValue:    decimal.NewFromInt(200000),
		WeightKg:      decimal.NewFromInt(5),
		ServiceTypeID: uuid.New(),
	})

	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.NotEmpty(t, resp.Reason)
}

func TestPromotionService_ListActive(t *testing.T) {
	f := newPromotionFixture(t)

	created, err := f.service.Create(context.Background(), createRequest())
	require.NoError(t, err)

	second := createRequest()
	second.Code = "SUMMER20"
	other, err := f.service.Create(context.Background(), second)
	require.NoError(t, err)

	_, err = f.service.Deactivate(context.Background(), other.ID)
	require.NoError(t, err)

	active, err := f.service.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)
}
