package storage

import (
	"context"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
)

// EventStore is the append-only record of every accepted submission.
type EventStore interface {
	SaveEvent(ctx context.Context, event *v1.Event) error

	// StreamEvents calls fn for every event with start <= submitted_at < end,
	// ordered by submitted_at then insertion order. A zero end means no upper
	// bound. Iteration stops at the first error returned by fn.
	StreamEvents(ctx context.Context, start, end time.Time, fn func(*v1.Event) error) error

	// DeleteEventsBefore removes events submitted before cutoff and returns
	// the number removed.
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeviceStore holds the latest known state of each device.
type DeviceStore interface {
	// UpsertIfNewer inserts state, or replaces the existing row only when
	// state.LastSeen is strictly after the stored LastSeen. The comparison and
	// write are a single atomic step. Reports whether a row was written.
	UpsertIfNewer(ctx context.Context, state *v1.DeviceState) (bool, error)

	// ScanStates calls fn for every device with last_seen >= since that
	// matches filter. A nil filter matches every device.
	ScanStates(ctx context.Context, since time.Time, filter *v1.Filter, fn func(v1.DeviceState) error) error

	// CountStates returns the number of devices ScanStates would visit.
	CountStates(ctx context.Context, since time.Time, filter *v1.Filter) (int64, error)

	// DeleteStatesBefore removes devices whose last_seen is before cutoff.
	DeleteStatesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GroupCount is one group of a GROUP BY count.
type GroupCount struct {
	Value string
	Count int64
}

// GroupCounter is implemented by device stores that can push the
// group-by-count down to the database. Results must be ordered by count
// descending, then value ascending.
type GroupCounter interface {
	CountByDimension(ctx context.Context, dim v1.Dimension, since time.Time, filter *v1.Filter) ([]GroupCount, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
