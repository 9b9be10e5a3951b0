package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devstats-lab/devstats/internal/metrics"
	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// ErrComputeFailure wraps an error returned by a compute function.
var ErrComputeFailure = errors.New("cache compute failed")

// ComputeFunc produces a fresh value for a key.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// entryFunc is a ComputeFunc that also reports whether the value should be
// stored. An unstored value is still returned to the caller.
type entryFunc func(ctx context.Context) (value []byte, keep bool, err error)

// Cache memoizes computed values by key with a per-call TTL.
//
// A read within TTL returns the stored value. A read after expiry, or of an
// absent key, recomputes and swaps in a new entry. A forced call always
// recomputes. Concurrent recomputes of one key share a single compute.
type Cache struct {
	store Store
	group singleflight.Group
	nowFn func() time.Time
}

// New creates a cache over store.
func New(store Store) *Cache {
	return &Cache{
		store: store,
		nowFn: time.Now,
	}
}

// GetOrCompute returns the value for key, computing it when needed.
//
// When a lazy recompute fails and an older entry exists, the older value is
// returned and the failure is logged. Forced calls and calls with no prior
// entry return the failure wrapped in ErrComputeFailure. A failed compute
// never modifies the stored entry.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc, force bool) ([]byte, error) {
	return c.getOrCompute(ctx, key, ttl, func(ctx context.Context) ([]byte, bool, error) {
		value, err := compute(ctx)
		return value, true, err
	}, force)
}

func (c *Cache) getOrCompute(ctx context.Context, key string, ttl time.Duration, compute entryFunc, force bool) ([]byte, error) {
	prior, found, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("[Cache] Store read failed, recomputing", "key", key, "error", err)
		found = false
	}

	if !force && found && prior.Fresh(c.nowFn()) {
		metrics.RecordCacheLookup("hit")
		return prior.Value, nil
	}

	// Forced calls get their own flight so they never piggyback on a lazy
	// fill that started before them.
	flightKey := key
	if force {
		flightKey = "force\x00" + key
		metrics.RecordCacheLookup("forced")
	} else {
		metrics.RecordCacheLookup("miss")
	}

	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		return c.refresh(context.WithoutCancel(ctx), key, ttl, compute)
	})
	if err == nil {
		return v.([]byte), nil
	}

	if !force && found {
		metrics.RecordCacheLookup("stale")
		slog.Warn("[Cache] Recompute failed, serving stale entry",
			"key", key,
			"expired_at", prior.ExpiresAt,
			"error", err)
		return prior.Value, nil
	}
	return nil, err
}

func (c *Cache) refresh(ctx context.Context, key string, ttl time.Duration, compute entryFunc) ([]byte, error) {
	start := c.nowFn()
	value, keep, err := compute(ctx)
	metrics.RecordCacheCompute(c.nowFn().Sub(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrComputeFailure, key, err)
	}
	if !keep {
		slog.Debug("[Cache] Computed value not stored", "key", key)
		return value, nil
	}

	entry := Entry{Value: value, ExpiresAt: c.nowFn().Add(ttl)}
	if err := c.store.Set(ctx, key, entry); err != nil {
		// The computed value is still good for this caller.
		slog.Error("[Cache] Store write failed", "key", key, "error", err)
	}
	return value, nil
}

// Peek returns the stored value for key regardless of expiry, without
// computing anything.
func (c *Cache) Peek(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Value, true, nil
}

// Load is GetOrCompute for JSON-encodable values.
func Load[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, force bool, compute func(ctx context.Context) (T, error)) (T, error) {
	return LoadIf(ctx, c, key, ttl, force, compute, nil)
}

// LoadIf is Load that stores a computed value only when keep reports true.
// Values that are not kept are returned but recomputed on the next call.
// A nil keep stores everything.
func LoadIf[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, force bool, compute func(ctx context.Context) (T, error), keep func(T) bool) (T, error) {
	var out T

	raw, err := c.getOrCompute(ctx, key, ttl, func(ctx context.Context) ([]byte, bool, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, false, err
		}
		b, err := json.Marshal(v)
		return b, keep == nil || keep(v), err
	}, force)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return out, nil
}
