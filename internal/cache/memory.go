package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Expired entries are retained for
// staleRetention so a failed recompute can still serve them, then swept by
// a background janitor.
type MemoryStore struct {
	mu             sync.RWMutex
	entries        map[string]Entry
	staleRetention time.Duration
	nowFn          func() time.Time
	stop           chan struct{}
	done           chan struct{}
}

// NewMemoryStore creates a store and starts its janitor. A zero
// cleanupInterval disables the janitor.
func NewMemoryStore(staleRetention, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:        make(map[string]Entry),
		staleRetention: staleRetention,
		nowFn:          time.Now,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	} else {
		close(s.done)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
	return nil
}

// Sweep removes entries expired for longer than the stale retention.
func (s *MemoryStore) Sweep() int {
	cutoff := s.nowFn().Add(-s.staleRetention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.ExpiresAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("[Cache] Swept expired entries", "removed", n)
			}
		}
	}
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
	return nil
}
