package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lastmile/backend/internal/domain/shared"
)

const memorySweepInterval = 5 * time.Minute

// MemoryIdempotencyStore keeps processed references in a map. Good for
// a single process and for tests; state is lost on restart and is not
// shared between instances.
type MemoryIdempotencyStore struct {
	mu        sync.RWMutex
	deadlines map[string]time.Time

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore starts a store with a background sweeper
// that drops expired references. Call Close to stop the sweeper.
func NewInMemoryIdempotencyStore() *MemoryIdempotencyStore {
	s := &MemoryIdempotencyStore{
		deadlines: make(map[string]time.Time),
		stop:      make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop()

	return s
}

// MarkProcessed records the reference and reports whether it was new.
// An expired entry counts as new and gets a fresh TTL.
func (s *MemoryIdempotencyStore) MarkProcessed(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.deadlines[reference]; ok && time.Now().Before(deadline) {
		return false, nil
	}

	s.deadlines[reference] = time.Now().Add(ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) IsProcessed(ctx context.Context, reference string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.deadlines[reference]
	return ok && time.Now().Before(deadline), nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

// Size reports the number of stored references, expired ones included
// until the next sweep.
func (s *MemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deadlines)
}

func (s *MemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(memorySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for reference, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, reference)
		}
	}
}

var _ shared.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
