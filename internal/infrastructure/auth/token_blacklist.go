package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "token:blacklist:"

// TokenBlacklist revokes JWTs before their natural expiry. Single
// tokens are revoked by JTI; revoking a whole user stores a cutoff
// timestamp and rejects every token issued at or before it.
type TokenBlacklist interface {
	// AddToBlacklist revokes one token. ttl should cover the token's
	// remaining lifetime; after that the entry can expire safely.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// AddUserTokensToBlacklist records now as the user's revocation
	// cutoff, invalidating all previously issued tokens.
	AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error

	IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist shares revocation state across instances.
type RedisTokenBlacklist struct {
	client *redis.Client
}

// RedisTokenBlacklistConfig holds the Redis connection settings.
type RedisTokenBlacklistConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenBlacklist connects to Redis and pings it before
// returning; a blacklist that silently fails open would defeat
// revocation.
func NewRedisTokenBlacklist(cfg RedisTokenBlacklistConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for token blacklist: %w", err)
	}

	return &RedisTokenBlacklist{client: client}, nil
}

func jtiKey(jti string) string {
	return blacklistKeyPrefix + "jti:" + jti
}

func userKey(userID string) string {
	return blacklistKeyPrefix + "user:" + userID
}

func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

func (b *RedisTokenBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	cutoff := time.Now().Unix()
	if err := b.client.Set(ctx, userKey(userID), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}

	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}

	return tokenIssuedAt.Unix() <= cutoff, nil
}

func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist backs revocation with process-local maps.
// Used in tests and as a degraded fallback when Redis is down; other
// instances will not see its revocations.
type InMemoryTokenBlacklist struct {
	mu          sync.RWMutex
	revokedJTIs map[string]time.Time // jti -> entry expiry
	userCutoffs map[string]time.Time // userID -> revocation cutoff
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revokedJTIs: make(map[string]time.Time),
		userCutoffs: make(map[string]time.Time),
	}
}

func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.revokedJTIs[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revokedJTIs, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) AddUserTokensToBlacklist(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userCutoffs[userID] = time.Now()
	return nil
}

func (b *InMemoryTokenBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff, ok := b.userCutoffs[userID]
	if !ok {
		return false, nil
	}
	// Nanosecond precision so a token issued right after revocation in
	// the same second still passes.
	return !tokenIssuedAt.After(cutoff), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
