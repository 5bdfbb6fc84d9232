package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lastmile/backend/internal/domain/shared"
)

const idempotencyKeyPrefix = "lastmile:idempotency:"

// RedisIdempotencyStore shares processed references across instances,
// so a gateway callback retried against a different pod is still
// recognized as a duplicate.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore connects to Redis and verifies the
// connection with a 5 second ping.
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client}, nil
}

// MarkProcessed sets the reference key with SETNX so the check and the
// write are one atomic operation.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	wasSet, err := s.client.SetNX(ctx, idempotencyKeyPrefix+reference, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reference as processed: %w", err)
	}
	return wasSet, nil
}

func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, reference string) (bool, error) {
	exists, err := s.client.Exists(ctx, idempotencyKeyPrefix+reference).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return exists > 0, nil
}

func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
