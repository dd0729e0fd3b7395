package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a store's expiry without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore()
	store.now = clock.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

const (
	hashA = "9f2c1e0b4d"
	hashB = "4be01c7a55"
	hashC = "0d7e3a9c12"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store, clock := newClockedStore(t)
	ctx := context.Background()

	added, err := store.MarkProcessed(ctx, hashA, time.Hour)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.MarkProcessed(ctx, hashA, time.Hour)
	require.NoError(t, err)
	assert.False(t, added, "a live hash is not added twice")

	seen, err := store.IsProcessed(ctx, hashA)
	require.NoError(t, err)
	assert.True(t, seen)

	clock.Advance(time.Hour)
	seen, err = store.IsProcessed(ctx, hashA)
	require.NoError(t, err)
	assert.False(t, seen, "expiry is exclusive")

	added, err = store.MarkProcessed(ctx, hashA, time.Hour)
	require.NoError(t, err)
	assert.True(t, added, "an expired hash can be recorded again")
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_Batch(t *testing.T) {
	store, clock := newClockedStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkProcessedBatch(ctx, []string{hashA, hashB}, time.Hour))
	require.NoError(t, store.MarkProcessedBatch(ctx, []string{hashC}, time.Minute))

	known, err := store.ProcessedAmong(ctx, []string{hashC, "unseen", hashB, hashA})
	require.NoError(t, err)
	assert.Equal(t, []string{hashC, hashB, hashA}, known, "input order is kept")

	clock.Advance(30 * time.Minute)
	known, err = store.ProcessedAmong(ctx, []string{hashA, hashB, hashC})
	require.NoError(t, err)
	assert.Equal(t, []string{hashA, hashB}, known)

	// a re-upload refreshes the hashes it confirmed
	require.NoError(t, store.MarkProcessedBatch(ctx, []string{hashA}, time.Hour))
	clock.Advance(45 * time.Minute)
	known, err = store.ProcessedAmong(ctx, []string{hashA, hashB})
	require.NoError(t, err)
	assert.Equal(t, []string{hashA}, known)
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store, clock := newClockedStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkProcessedBatch(ctx, []string{hashA, hashB}, time.Minute))
	_, err := store.MarkProcessed(ctx, hashC, 24*time.Hour)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	assert.Equal(t, 3, store.Size(), "expired hashes stay until swept")

	store.sweep()
	assert.Equal(t, 1, store.Size())
	seen, err := store.IsProcessed(ctx, hashC)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const uploads = 50
	var added atomic.Int32
	var wg sync.WaitGroup
	for range uploads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.MarkProcessed(ctx, hashA, time.Hour); err == nil && ok {
				added.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), added.Load())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
