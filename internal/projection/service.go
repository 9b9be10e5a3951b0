package projection

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/cache"
	coreagg "github.com/devstats-lab/devstats/internal/core/aggregation"
	"github.com/devstats-lab/devstats/internal/web"
)

// Options configures the query service.
type Options struct {
	// TTL is how long a computed aggregate or page stays fresh.
	TTL time.Duration

	// Windows are the served window sizes in days. The first is the default.
	Windows []int

	// TopN truncates popularity lists in responses and pages. Zero keeps all rows.
	TopN int
}

// Service implements the cache-fronted read path. Every query goes through
// the cache; a miss or expired entry is recomputed by the aggregation engine.
//
// The force flag on each method is for the warm job. HTTP handlers always
// pass false.
type Service struct {
	engine  *coreagg.Engine
	cache   *cache.Cache
	pages   *web.Renderer
	ttl     time.Duration
	windows []int
	topN    int
	nowFn   func() time.Time
}

func NewService(engine *coreagg.Engine, c *cache.Cache, pages *web.Renderer, opts Options) *Service {
	if engine == nil {
		panic("projection: engine must not be nil")
	}
	if c == nil {
		panic("projection: cache must not be nil")
	}
	if pages == nil {
		panic("projection: renderer must not be nil")
	}

	windows := opts.Windows
	if len(windows) == 0 {
		windows = []int{90}
	}
	return &Service{
		engine:  engine,
		cache:   c,
		pages:   pages,
		ttl:     opts.TTL,
		windows: append([]int(nil), windows...),
		topN:    opts.TopN,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Windows returns the served window sizes.
func (s *Service) Windows() []int {
	return append([]int(nil), s.windows...)
}

// DefaultWindow is the window used by pages and when a query omits one.
func (s *Service) DefaultWindow() int {
	return s.windows[0]
}

// Serves reports whether days is a configured window.
func (s *Service) Serves(days int) bool {
	for _, w := range s.windows {
		if w == days {
			return true
		}
	}
	return false
}

// TopN is the configured row limit for lists.
func (s *Service) TopN() int {
	return s.topN
}

// Popular returns the full popularity ranking of dim over days.
func (s *Service) Popular(ctx context.Context, dim v1.Dimension, days int, force bool) (*v1.AggregateResult, error) {
	return cache.Load(ctx, s.cache, cache.PopularKey(dim, days), s.ttl, force,
		func(ctx context.Context) (*v1.AggregateResult, error) {
			return s.engine.MostPopular(ctx, dim, days)
		})
}

// Count returns the number of active devices over days, optionally filtered.
// Filtered zero counts are not cached, so unknown values do not fill the
// store.
func (s *Service) Count(ctx context.Context, days int, filter *v1.Filter, force bool) (int64, error) {
	return cache.LoadIf(ctx, s.cache, cache.CountKey(days, filter), s.ttl, force,
		func(ctx context.Context) (int64, error) {
			return s.engine.CountActive(ctx, days, filter)
		},
		func(n int64) bool { return filter == nil || n > 0 })
}

// Info returns the breakdown of devices whose field equals value. Results
// with no matching devices are not cached.
func (s *Service) Info(ctx context.Context, field v1.Dimension, value string, days int, force bool) (*v1.FieldInfo, error) {
	return cache.LoadIf(ctx, s.cache, cache.InfoKey(field, value, days), s.ttl, force,
		func(ctx context.Context) (*v1.FieldInfo, error) {
			return s.engine.InfoByField(ctx, field, value, days)
		},
		func(info *v1.FieldInfo) bool { return info != nil && info.Total > 0 })
}

// IndexPage returns the rendered landing page for the default window.
func (s *Service) IndexPage(ctx context.Context, force bool) ([]byte, error) {
	days := s.DefaultWindow()
	return s.cache.GetOrCompute(ctx, cache.IndexPageKey(days), s.ttl, func(ctx context.Context) ([]byte, error) {
		total, err := s.Count(ctx, days, nil, false)
		if err != nil {
			return nil, err
		}

		page := web.IndexPage{
			WindowDays:  days,
			Total:       total,
			GeneratedAt: s.nowFn(),
		}
		for _, dim := range []v1.Dimension{v1.DimensionModel, v1.DimensionCountry} {
			res, err := s.Popular(ctx, dim, days, false)
			if err != nil {
				return nil, err
			}
			page.Tables = append(page.Tables, web.Table{Dimension: dim, Rows: res.Top(s.topN).Rows})
		}
		return s.pages.Index(page)
	}, force)
}

// DetailPage renders and caches the detail page of field=value.
func (s *Service) DetailPage(ctx context.Context, field v1.Dimension, value string, force bool) ([]byte, error) {
	days := s.DefaultWindow()
	return s.cache.GetOrCompute(ctx, cache.DetailPageKey(field, value, days), s.ttl, func(ctx context.Context) ([]byte, error) {
		info, err := s.Info(ctx, field, value, days, false)
		if err != nil {
			return nil, err
		}

		page := web.DetailPage{
			Field:       field,
			Value:       value,
			WindowDays:  days,
			Total:       info.Total,
			GeneratedAt: s.nowFn(),
		}
		for _, col := range field.DetailColumns() {
			rows := info.Breakdown[col]
			if s.topN > 0 && len(rows) > s.topN {
				rows = rows[:s.topN]
			}
			page.Tables = append(page.Tables, web.Table{Dimension: col, Rows: rows})
		}
		return s.pages.Detail(page)
	}, force)
}

// CachedDetailPage returns a previously rendered detail page without
// computing one. Detail pages are only generated by the warm job.
func (s *Service) CachedDetailPage(ctx context.Context, field v1.Dimension, value string) ([]byte, bool, error) {
	page, ok, err := s.cache.Peek(ctx, cache.DetailPageKey(field, value, s.DefaultWindow()))
	if err != nil {
		return nil, false, fmt.Errorf("read detail page: %w", err)
	}
	return page, ok, nil
}

// PendingPage renders the placeholder for a detail page not generated yet.
func (s *Service) PendingPage(field, value string) ([]byte, error) {
	return s.pages.Pending(field, value)
}
