package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/domain/pricing"
	"github.com/lastmile/backend/internal/domain/shared"
)

type countingRateStore struct {
	bracketCalls int
	feeCalls     int
	bracket      *pricing.RateBracket
	bracketErr   error
	configs      []pricing.FeeConfig
}

func (s *countingRateStore) FindBracket(ctx context.Context, serviceTypeID uuid.UUID, region pricing.RegionClass, weightKg decimal.Decimal) (*pricing.RateBracket, error) {
	s.bracketCalls++
	if s.bracketErr != nil {
		return nil, s.bracketErr
	}
	return s.bracket, nil
}

func (s *countingRateStore) FindFeeConfigs(ctx context.Context, serviceTypeID uuid.UUID) ([]pricing.FeeConfig, error) {
	s.feeCalls++
	return s.configs, nil
}

func bracketFixture(basePrice decimal.Decimal) *pricing.RateBracket {
	return &pricing.RateBracket{
		ServiceTypeID: uuid.New(),
		Region:        pricing.RegionIntraCity,
		UnitWeightKg:  decimal.NewFromFloat(0.5),
		BasePrice:     basePrice,
		ExtraPrice:    decimal.NewFromInt(5000),
	}
}

func TestRateCache_FindBracket_CachesHits(t *testing.T) {
	store := &countingRateStore{
		bracket: bracketFixture(decimal.NewFromInt(22000)),
	}
	cache := NewRateCache(store, time.Minute)

	serviceTypeID := uuid.New()
	weight := decimal.NewFromFloat(1.5)

	for i := 0; i < 3; i++ {
		bracket, err := cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
		require.NoError(t, err)
		require.NotNil(t, bracket)
		assert.True(t, bracket.BasePrice.Equal(decimal.NewFromInt(22000)))
	}

	assert.Equal(t, 1, store.bracketCalls)
}

func TestRateCache_FindBracket_DistinctKeysMiss(t *testing.T) {
	store := &countingRateStore{
		bracket: bracketFixture(decimal.NewFromInt(15000)),
	}
	cache := NewRateCache(store, time.Minute)

	serviceTypeID := uuid.New()
	_, err := cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	_, err = cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionInterRegion, decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	_, err = cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, decimal.NewFromFloat(3))
	require.NoError(t, err)

	assert.Equal(t, 3, store.bracketCalls)
}

func TestRateCache_FindBracket_CachesNotFound(t *testing.T) {
	store := &countingRateStore{bracketErr: shared.ErrNotFound}
	cache := NewRateCache(store, time.Minute)

	serviceTypeID := uuid.New()
	weight := decimal.NewFromInt(2)

	for i := 0; i < 2; i++ {
		_, err := cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraRegion, weight)
		require.ErrorIs(t, err, shared.ErrNotFound)
	}

	assert.Equal(t, 1, store.bracketCalls)
}

func TestRateCache_FindBracket_DoesNotCacheTransientErrors(t *testing.T) {
	store := &countingRateStore{bracketErr: context.DeadlineExceeded}
	cache := NewRateCache(store, time.Minute)

	serviceTypeID := uuid.New()
	weight := decimal.NewFromInt(2)

	_, err := cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
	require.Error(t, err)
	_, err = cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
	require.Error(t, err)

	assert.Equal(t, 2, store.bracketCalls)
}

func TestRateCache_FindFeeConfigs_CachesPerServiceType(t *testing.T) {
	store := &countingRateStore{
		configs: []pricing.FeeConfig{{Kind: pricing.FeeCODHandling, ChargeType: pricing.ChargeFlat}},
	}
	cache := NewRateCache(store, time.Minute)

	serviceTypeID := uuid.New()
	for i := 0; i < 3; i++ {
		configs, err := cache.FindFeeConfigs(context.Background(), serviceTypeID)
		require.NoError(t, err)
		require.Len(t, configs, 1)
	}
	assert.Equal(t, 1, store.feeCalls)

	_, err := cache.FindFeeConfigs(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, store.feeCalls)
}

func TestRateCache_ExpiryAndInvalidate(t *testing.T) {
	store := &countingRateStore{
		bracket: bracketFixture(decimal.NewFromInt(15000)),
	}
	cache := NewRateCache(store, time.Nanosecond)

	serviceTypeID := uuid.New()
	weight := decimal.NewFromInt(1)

	_, err := cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = cache.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
	require.NoError(t, err)
	assert.Equal(t, 2, store.bracketCalls)

	long := NewRateCache(store, time.Hour)
	_, err = long.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
	require.NoError(t, err)
	long.Invalidate()
	_, err = long.FindBracket(context.Background(), serviceTypeID, pricing.RegionIntraCity, weight)
	require.NoError(t, err)
	assert.Equal(t, 4, store.bracketCalls)
}
