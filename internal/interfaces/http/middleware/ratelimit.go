package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lastmile/backend/internal/interfaces/http/dto"
)

// RateLimiter is an in-memory fixed-window limiter. Each key gets its
// own window; counters reset when the window elapses. State lives in
// process memory, so limits apply per instance, not cluster-wide.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count   int
	started time.Time
}

// NewRateLimiter allows up to limit requests per key per window and
// starts a janitor that evicts idle keys.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	go rl.evictIdle()
	return rl
}

// Allow records a request for key and reports whether it fits the window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b := rl.buckets[key]
	if b == nil || now.Sub(b.started) >= rl.window {
		rl.buckets[key] = &bucket{count: 1, started: now}
		return true
	}
	if b.count >= rl.limit {
		return false
	}
	b.count++
	return true
}

// Remaining reports how many requests key has left in its current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.buckets[key]
	if b == nil || rl.now().Sub(b.started) >= rl.window {
		return rl.limit
	}
	if left := rl.limit - b.count; left > 0 {
		return left
	}
	return 0
}

// RetryAfter reports how long key must wait before its window resets.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.buckets[key]
	if b == nil {
		return 0
	}
	if wait := rl.window - rl.now().Sub(b.started); wait > 0 {
		return wait
	}
	return 0
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for key, b := range rl.buckets {
			if now.Sub(b.started) >= rl.window*2 {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit throttles by authenticated user when JWT claims are present,
// falling back to client IP for anonymous traffic.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := GetJWTUserID(c); userID != "" {
			key = userID + ":" + key
		}

		if !limiter.Allow(key) {
			retry := int(limiter.RetryAfter(key).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
