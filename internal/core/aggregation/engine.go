package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid aggregate query")

// Engine computes popularity aggregates over DeviceState. Every result is
// a pure function of the device rows inside the window, so repeat
// submissions from one device never inflate a count.
type Engine struct {
	devices storage.DeviceStore
	nowFn   func() time.Time
}

// NewEngine creates an engine reading from devices.
func NewEngine(devices storage.DeviceStore) *Engine {
	return &Engine{
		devices: devices,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// MostPopular ranks every value of dim among devices active in the window.
func (e *Engine) MostPopular(ctx context.Context, dim v1.Dimension, windowDays int) (*v1.AggregateResult, error) {
	return e.Popular(ctx, dim, windowDays, nil)
}

// Popular is MostPopular restricted to devices matching filter.
func (e *Engine) Popular(ctx context.Context, dim v1.Dimension, windowDays int, filter *v1.Filter) (*v1.AggregateResult, error) {
	if !dim.Valid() {
		return nil, invalidQueryf("unknown dimension %q", dim)
	}
	if err := validateDays(windowDays); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	since := WindowStart(e.nowFn(), windowDays)
	rows, total, err := e.rank(ctx, dim, since, filter)
	if err != nil {
		return nil, err
	}

	return &v1.AggregateResult{
		Dimension:  dim,
		WindowDays: windowDays,
		Rows:       rows,
		Total:      total,
	}, nil
}

// CountActive counts devices seen within the window, optionally filtered.
func (e *Engine) CountActive(ctx context.Context, windowDays int, filter *v1.Filter) (int64, error) {
	if err := validateDays(windowDays); err != nil {
		return 0, err
	}
	if err := validateFilter(filter); err != nil {
		return 0, err
	}

	total, err := e.devices.CountStates(ctx, WindowStart(e.nowFn(), windowDays), filter)
	if err != nil {
		return 0, fmt.Errorf("count active devices: %w", err)
	}
	return total, nil
}

// InfoByField breaks down the devices whose field equals value across the
// other three dimensions. All four reads share one window start.
func (e *Engine) InfoByField(ctx context.Context, field v1.Dimension, value string, windowDays int) (*v1.FieldInfo, error) {
	filter := &v1.Filter{Field: field, Value: value}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if err := validateDays(windowDays); err != nil {
		return nil, err
	}

	since := WindowStart(e.nowFn(), windowDays)
	info := &v1.FieldInfo{
		Field:      field,
		Value:      value,
		WindowDays: windowDays,
		Breakdown:  make(map[v1.Dimension][]v1.PopularityRow, len(v1.Dimensions)-1),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, other := range field.Others() {
		g.Go(func() error {
			rows, _, err := e.rank(gctx, other, since, filter)
			if err != nil {
				return err
			}
			mu.Lock()
			info.Breakdown[other] = rows
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		total, err := e.devices.CountStates(gctx, since, filter)
		if err != nil {
			return fmt.Errorf("count %s=%q: %w", field, value, err)
		}
		info.Total = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return info, nil
}

// rank pushes the group-by down when the store supports it and falls back
// to a scan plus in-process tally otherwise.
func (e *Engine) rank(ctx context.Context, dim v1.Dimension, since time.Time, filter *v1.Filter) ([]v1.PopularityRow, int64, error) {
	if counter, ok := e.devices.(storage.GroupCounter); ok {
		groups, err := counter.CountByDimension(ctx, dim, since, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("group by %s: %w", dim, err)
		}
		rows, total := rowsFromGroups(groups)
		return rows, total, nil
	}

	counts := make(map[string]int64)
	err := e.devices.ScanStates(ctx, since, filter, func(st v1.DeviceState) error {
		counts[st.Value(dim)]++
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan device states for %s: %w", dim, err)
	}

	rows, total := Rank(counts)
	slog.Debug("[Aggregation] Ranked in process",
		"dimension", dim,
		"groups", len(rows),
		"total", total)
	return rows, total, nil
}

func validateFilter(f *v1.Filter) error {
	if f == nil {
		return nil
	}
	if !f.Field.Valid() {
		return invalidQueryf("unknown filter field %q", f.Field)
	}
	if f.Value == "" {
		return invalidQueryf("filter value for %s must not be empty", f.Field)
	}
	return nil
}
