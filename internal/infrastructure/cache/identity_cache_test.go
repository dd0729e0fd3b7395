package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// plainStore implements only the single-key IdempotencyStore methods
type plainStore struct {
	mock.Mock
}

func (m *plainStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *plainStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *plainStore) Close() error {
	return m.Called().Error(0)
}

func TestIdentityCache_InMemory(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	c := NewIdentityCache(store, time.Hour, nil)
	defer c.Close()
	ctx := context.Background()

	assert.Empty(t, c.Known(ctx, []string{"h1", "h2"}))

	c.Remember(ctx, []string{"h1"})
	known := c.Known(ctx, []string{"h1", "h2"})
	assert.True(t, known.Contains("h1"))
	assert.False(t, known.Contains("h2"))
	assert.Equal(t, 1, store.Size())
}

func TestIdentityCache_SingleKeyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to per-key calls", func(t *testing.T) {
		store := new(plainStore)
		store.On("IsProcessed", ctx, "h1").Return(true, nil)
		store.On("IsProcessed", ctx, "h2").Return(false, nil)
		store.On("MarkProcessed", ctx, "h2", DefaultIdentityTTL).Return(true, nil)

		c := NewIdentityCache(store, 0, nil)
		known := c.Known(ctx, []string{"h1", "h2"})
		assert.True(t, known.Contains("h1"))
		assert.Len(t, known, 1)

		c.Remember(ctx, []string{"h2"})
		store.AssertExpectations(t)
	})

	t.Run("lookup errors read as unknown", func(t *testing.T) {
		store := new(plainStore)
		store.On("IsProcessed", ctx, "h1").Return(false, errors.New("connection refused"))

		c := NewIdentityCache(store, time.Minute, nil)
		assert.Empty(t, c.Known(ctx, []string{"h1", "h2"}))
		store.AssertNumberOfCalls(t, "IsProcessed", 1)
	})
}

func TestIdentityCache_Nil(t *testing.T) {
	var c *IdentityCache
	ctx := context.Background()

	assert.Empty(t, c.Known(ctx, []string{"h1"}))
	c.Remember(ctx, []string{"h1"})
	require.NoError(t, c.Close())

	empty := NewIdentityCache(nil, time.Minute, nil)
	assert.Empty(t, empty.Known(ctx, []string{"h1"}))
}
