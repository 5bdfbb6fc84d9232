package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "vnpay:TXN20260830001", time.Minute)
	require.NoError(t, err)
	assert.True(t, first, "first mark should report new")

	second, err := store.MarkProcessed(ctx, "vnpay:TXN20260830001", time.Minute)
	require.NoError(t, err)
	assert.False(t, second, "replayed callback reference is a duplicate")

	other, err := store.MarkProcessed(ctx, "vnpay:TXN20260830002", time.Minute)
	require.NoError(t, err)
	assert.True(t, other, "different reference is independent")
}

func TestMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "batch:HN-01-20260830")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "batch:HN-01-20260830", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "batch:HN-01-20260830")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "vnpay:TXNEXPIRES", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	processed, err := store.IsProcessed(ctx, "vnpay:TXNEXPIRES")
	require.NoError(t, err)
	assert.False(t, processed, "expired reference reads as unprocessed")

	again, err := store.MarkProcessed(ctx, "vnpay:TXNEXPIRES", time.Minute)
	require.NoError(t, err)
	assert.True(t, again, "expired reference can be marked again")
}

func TestMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.MarkProcessed(ctx, fmt.Sprintf("ref-%d", i), time.Millisecond)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, store.Size())

	time.Sleep(5 * time.Millisecond)
	store.sweep()
	assert.Equal(t, 0, store.Size())
}

func TestMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const goroutines = 20
	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkProcessed(ctx, "vnpay:TXNRACE", time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one goroutine marks the reference first")
}
