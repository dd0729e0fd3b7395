package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fieldsales/backend/internal/domain/shared"
)

// sweepInterval is how often expired hashes are dropped
const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps identity hashes in a map with per-key
// expiry. It serves single-instance deployments and the Redis fallback.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	now     func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper;
// Close stops it
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

func (s *InMemoryIdempotencyStore) live(key string, now time.Time) bool {
	exp, ok := s.expires[key]
	return ok && now.Before(exp)
}

// MarkProcessed records key until ttl passes. It reports false when key was
// already recorded and has not expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.live(key, now) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// MarkProcessedBatch records keys under one lock, extending live ones
func (s *InMemoryIdempotencyStore) MarkProcessedBatch(_ context.Context, keys []string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := s.now().Add(ttl)
	for _, key := range keys {
		s.expires[key] = exp
	}
	return nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live(key, s.now()), nil
}

// ProcessedAmong returns the keys that are recorded and not expired
func (s *InMemoryIdempotencyStore) ProcessedAmong(_ context.Context, keys []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var known []string
	for _, key := range keys {
		if s.live(key, now) {
			known = append(known, key)
		}
	}
	return known, nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(every time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(every)
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

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
		}
	}
}

// Size returns the number of recorded hashes, expired ones included until
// the next sweep
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

var (
	_ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
	_ batchStore              = (*InMemoryIdempotencyStore)(nil)
)
