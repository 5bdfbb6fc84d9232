package cache

import (
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory picks an idempotency store backend at
// startup: Redis when reachable, in-memory otherwise.
type IdempotencyStoreFactory struct {
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore tries Redis first and falls back to the in-memory store.
// The fallback cannot deduplicate across instances, so it logs a
// warning rather than failing startup.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return store, nil
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Duplicate gateway callbacks may be processed twice in multi-instance deployments.",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
