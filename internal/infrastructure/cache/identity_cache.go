package cache

import (
	"context"
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultIdentityTTL is how long a stored identity stays in the cache
const DefaultIdentityTTL = 24 * time.Hour

// batchStore is implemented by stores that can check or mark many keys at once
type batchStore interface {
	ProcessedAmong(ctx context.Context, keys []string) ([]string, error)
	MarkProcessedBatch(ctx context.Context, keys []string, ttl time.Duration) error
}

// IdentityCache remembers identity hashes that are known to be stored, so
// re-uploads of the same file skip most database lookups. It is advisory:
// the unique index remains the authority and cache failures only cost a
// lookup.
type IdentityCache struct {
	store  shared.IdempotencyStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewIdentityCache wraps an idempotency store. A nil store yields a cache
// that knows nothing.
func NewIdentityCache(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdentityCache {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityCache{store: store, ttl: ttl, logger: logger}
}

// Known returns the hashes the cache has seen stored
func (c *IdentityCache) Known(ctx context.Context, hashes []string) sales.HashSet {
	known := make(sales.HashSet)
	if c == nil || c.store == nil || len(hashes) == 0 {
		return known
	}

	if bs, ok := c.store.(batchStore); ok {
		found, err := bs.ProcessedAmong(ctx, hashes)
		if err != nil {
			c.logger.Warn("identity cache lookup failed", zap.Error(err), zap.Int("keys", len(hashes)))
			return known
		}
		for _, h := range found {
			known.Add(h)
		}
		return known
	}

	for _, h := range hashes {
		ok, err := c.store.IsProcessed(ctx, h)
		if err != nil {
			c.logger.Warn("identity cache lookup failed", zap.Error(err))
			return known
		}
		if ok {
			known.Add(h)
		}
	}
	return known
}

// Remember records hashes that the database has confirmed as stored
func (c *IdentityCache) Remember(ctx context.Context, hashes []string) {
	if c == nil || c.store == nil || len(hashes) == 0 {
		return
	}

	if bs, ok := c.store.(batchStore); ok {
		if err := bs.MarkProcessedBatch(ctx, hashes, c.ttl); err != nil {
			c.logger.Warn("identity cache update failed", zap.Error(err), zap.Int("keys", len(hashes)))
		}
		return
	}

	for _, h := range hashes {
		if _, err := c.store.MarkProcessed(ctx, h, c.ttl); err != nil {
			c.logger.Warn("identity cache update failed", zap.Error(err))
			return
		}
	}
}

// Close releases the underlying store
func (c *IdentityCache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}
