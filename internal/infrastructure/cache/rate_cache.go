package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/pricing"
	"github.com/lastmile/backend/internal/domain/shared"
)

// DefaultRateCacheTTL bounds how long pricing rows are served from memory.
// Rate tables change rarely, so a short TTL keeps quotes fresh without
// hitting the database on every fee calculation.
const DefaultRateCacheTTL = 5 * time.Minute

type bracketEntry struct {
	bracket   *pricing.RateBracket
	err       error
	expiresAt time.Time
}

type feeConfigEntry struct {
	configs   []pricing.FeeConfig
	expiresAt time.Time
}

// RateCache is a read-through in-memory cache in front of a RateStore.
// It caches bracket lookups per (service type, region, weight) and fee
// config lists per service type. Not-found results are cached too so a
// misconfigured service type does not hammer the database.
type RateCache struct {
	store pricing.RateStore
	ttl   time.Duration

	mu         sync.RWMutex
	brackets   map[string]bracketEntry
	feeConfigs map[uuid.UUID]feeConfigEntry
}

// NewRateCache wraps store with an in-memory TTL cache. A non-positive ttl
// falls back to DefaultRateCacheTTL.
func NewRateCache(store pricing.RateStore, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultRateCacheTTL
	}
	return &RateCache{
		store:      store,
		ttl:        ttl,
		brackets:   make(map[string]bracketEntry),
		feeConfigs: make(map[uuid.UUID]feeConfigEntry),
	}
}

// FindBracket returns the cached bracket for the lookup key, consulting the
// underlying store on a miss or after expiry.
func (c *RateCache) FindBracket(ctx context.Context, serviceTypeID uuid.UUID, region pricing.RegionClass, weightKg decimal.Decimal) (*pricing.RateBracket, error) {
	key := bracketKey(serviceTypeID, region, weightKg)

	c.mu.RLock()
	e, ok := c.brackets[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.bracket, e.err
	}

	bracket, err := c.store.FindBracket(ctx, serviceTypeID, region, weightKg)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c.mu.Lock()
	c.brackets[key] = bracketEntry{bracket: bracket, err: err, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return bracket, err
}

// FindFeeConfigs returns the cached fee configs for the service type,
// consulting the underlying store on a miss or after expiry.
func (c *RateCache) FindFeeConfigs(ctx context.Context, serviceTypeID uuid.UUID) ([]pricing.FeeConfig, error) {
	c.mu.RLock()
	e, ok := c.feeConfigs[serviceTypeID]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.configs, nil
	}

	configs, err := c.store.FindFeeConfigs(ctx, serviceTypeID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.feeConfigs[serviceTypeID] = feeConfigEntry{configs: configs, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return configs, nil
}

// Invalidate drops all cached entries. Callers should invoke it after rate
// table changes.
func (c *RateCache) Invalidate() {
	c.mu.Lock()
	c.brackets = make(map[string]bracketEntry)
	c.feeConfigs = make(map[uuid.UUID]feeConfigEntry)
	c.mu.Unlock()
}

func bracketKey(serviceTypeID uuid.UUID, region pricing.RegionClass, weightKg decimal.Decimal) string {
	return fmt.Sprintf("%s|%s|%s", serviceTypeID, region, weightKg.String())
}
