package cache

import (
	"context"
	"time"
)

// Entry is one memoized value. Entries are replaced whole, never patched.
type Entry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Fresh reports whether the entry has not yet expired at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store is the backing key/value store for the cache. Set must replace any
// existing entry atomically. Stores may keep expired entries around for a
// retention period so they can be served stale.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Close() error
}
