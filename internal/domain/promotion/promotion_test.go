package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

func intPtr(v int) *int { return &v }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func moneyPtr(v int64) *valueobject.Money {
	m := valueobject.NewVNDFromInt(v)
	return &m
}

func activePromotion(t *testing.T) *Promotion {
	p, err := NewPromotion(NewPromotionParams{
		Code:          "FREESHIP10",
		Name:          "Freeship",
		StartDate:     time.Now().Add(-24 * time.Hour),
		EndDate:       time.Now().Add(24 * time.Hour),
		IsGlobal:      true,
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: valueobject.NewVNDFromInt(20000),
	})
	require.NoError(t, err)
	return p
}

func TestNewPromotion_Validation(t *testing.T) {
	base := NewPromotionParams{
		Code:          "X",
		Name:          "X",
		StartDate:     time.Now(),
		EndDate:       time.Now().Add(time.Hour),
		DiscountType:  DiscountFixed,
		DiscountValue: decimal.NewFromInt(1000),
	}

	tests := []struct {
		name   string
		mutate func(*NewPromotionParams)
	}{
		{"empty code", func(p *NewPromotionParams) { p.Code = "" }},
		{"empty name", func(p *NewPromotionParams) { p.Name = "" }},
		{"inverted dates", func(p *NewPromotionParams) { p.EndDate = p.StartDate.Add(-time.Hour) }},
		{"bad discount type", func(p *NewPromotionParams) { p.DiscountType = DiscountType("RANDOM") }},
		{"zero discount", func(p *NewPromotionParams) { p.DiscountValue = decimal.Zero }},
		{"percentage over 100", func(p *NewPromotionParams) {
			p.DiscountType = DiscountPercentage
			p.DiscountValue = decimal.NewFromInt(150)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewPromotion(p)
			assert.Error(t, err)
		})
	}
}

func TestPromotion_UsageCounters(t *testing.T) {
	p := activePromotion(t)
	p.UsageLimit = intPtr(2)

	require.NoError(t, p.IncreaseUsage())
	require.NoError(t, p.IncreaseUsage())
	assert.Equal(t, 2, p.UsedCount)

	err := p.IncreaseUsage()
	assert.ErrorIs(t, err, shared.ErrUsageLimitReached)
	assert.Equal(t, 2, p.UsedCount)

	require.NoError(t, p.DecreaseUsage())
	assert.Equal(t, 1, p.UsedCount)

	p.UsedCount = 0
	assert.Error(t, p.DecreaseUsage())
}

func TestUserPromotion_UsageCounters(t *testing.T) {
	up, err := NewUserPromotion(uuid.New(), uuid.New())
	require.NoError(t, err)

	limit := intPtr(1)
	require.NoError(t, up.IncreaseUsage(limit))
	assert.ErrorIs(t, up.IncreaseUsage(limit), shared.ErrUsageLimitReached)

	require.NoError(t, up.DecreaseUsage())
	assert.Error(t, up.DecreaseUsage())
}

func TestPromotion_CalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Promotion)
		fee      int64
		expected string
	}{
		{"percentage", func(p *Promotion) {}, 50000, "5000"},
		{"below minimum earns nothing", func(p *Promotion) {}, 10000, "0"},
		{"capped at max", func(p *Promotion) {
			p.MaxDiscountAmount = moneyPtr(3000)
		}, 50000, "3000"},
		{"fixed", func(p *Promotion) {
			p.DiscountType = DiscountFixed
			p.DiscountValue = decimal.NewFromInt(15000)
		}, 50000, "15000"},
		{"fixed never exceeds fee", func(p *Promotion) {
			p.DiscountType = DiscountFixed
			p.DiscountValue = decimal.NewFromInt(80000)
		}, 50000, "50000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activePromotion(t)
			tt.mutate(p)
			discount := p.CalculateDiscount(valueobject.NewVNDFromInt(tt.fee))
			assert.Equal(t, tt.expected, discount.Amount().String())
		})
	}
}

type fakeUsageReader struct {
	links        map[string]*UserPromotion
	dailyGlobal  int
	dailyPerUser int
	orderCount   int64
	signup       time.Time
}

func (f *fakeUsageReader) FindUserPromotion(ctx context.Context, promotionID, userID uuid.UUID) (*UserPromotion, error) {
	link, ok := f.links[userID.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return link, nil
}

func (f *fakeUsageReader) CountUsageOnDate(ctx context.Context, promotionID uuid.UUID, day time.Time) (int, error) {
	return f.dailyGlobal, nil
}

func (f *fakeUsageReader) CountUserUsageOnDate(ctx context.Context, promotionID, userID uuid.UUID, day time.Time) (int, error) {
	return f.dailyPerUser, nil
}

func (f *fakeUsageReader) CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.orderCount, nil
}

func (f *fakeUsageReader) UserSignupTime(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	return f.signup, nil
}

func eligibleContext() OrderContext {
	return OrderContext{
		OrderValue:    valueobject.NewVNDFromInt(100000),
		WeightKg:      decimal.NewFromFloat(1.5),
		ServiceTypeID: uuid.New(),
	}
}

func TestEvaluator_IsEligible(t *testing.T) {
	userID := uuid.New()
	reader := &fakeUsageReader{signup: time.Now().Add(-24 * time.Hour)}
	ev := NewEvaluator(reader)

	p := activePromotion(t)
	assert.NoError(t, ev.IsEligible(context.Background(), p, userID, eligibleContext()))
}

func TestEvaluator_ShortCircuitOrder(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(*Promotion, *fakeUsageReader, *OrderContext)
		expected error
	}{
		{"inactive", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.Status = StatusInactive
		}, ErrPromotionInactive},
		{"not started", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.StartDate = time.Now().Add(time.Hour)
		}, ErrPromotionNotStarted},
		{"ended", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.EndDate = time.Now().Add(-time.Hour)
		}, ErrPromotionEnded},
		{"non-global without link", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.IsGlobal = false
		}, ErrPromotionNotHeld},
		{"per-user cap", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.IsGlobal = false
			p.PerUserLimit = intPtr(1)
			r.links = map[string]*UserPromotion{userID.String(): {UsedCount: 1}}
		}, shared.ErrUsageLimitReached},
		{"global cap", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.UsageLimit = intPtr(5)
			p.UsedCount = 5
		}, shared.ErrUsageLimitReached},
		{"daily global cap", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.DailyLimit = intPtr(10)
			r.dailyGlobal = 10
		}, ErrDailyLimitReached},
		{"daily per-user cap", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.DailyPerUserLimit = intPtr(1)
			r.dailyPerUser = 1
		}, ErrDailyLimitReached},
		{"min prior orders", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.MinPriorOrders = intPtr(3)
			r.orderCount = 2
		}, ErrOrderCountTooLow},
		{"service type excluded", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.ServiceTypeIDs = []uuid.UUID{uuid.New()}
		}, ErrServiceTypeExcluded},
		{"order value too low", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			o.OrderValue = valueobject.NewVNDFromInt(5000)
		}, ErrOrderValueTooLow},
		{"below weight band", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.MinWeightKg = decPtr(2)
		}, ErrWeightOutOfBand},
		{"above weight band", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.MaxWeightKg = decPtr(1)
		}, ErrWeightOutOfBand},
		{"not a first-time user", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.FirstTimeOnly = true
			r.orderCount = 4
		}, ErrNotFirstTimeUser},
		{"account too old", func(p *Promotion, r *fakeUsageReader, o *OrderContext) {
			p.MaxAccountAgeMonths = intPtr(6)
			r.signup = time.Now().AddDate(-1, 0, 0)
		}, ErrAccountTooOld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activePromotion(t)
			reader := &fakeUsageReader{signup: time.Now().Add(-24 * time.Hour)}
			orderCtx := eligibleContext()
			tt.mutate(p, reader, &orderCtx)

			err := NewEvaluator(reader).IsEligible(ctx, p, userID, orderCtx)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestEvaluator_FirstTimeUserWithZeroOrders(t *testing.T) {
	p := activePromotion(t)
	p.FirstTimeOnly = true
	reader := &fakeUsageReader{orderCount: 0, signup: time.Now()}

	err := NewEvaluator(reader).IsEligible(context.Background(), p, uuid.New(), eligibleContext())
	assert.NoError(t, err)
}
