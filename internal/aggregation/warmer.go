package aggregation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/metrics"
	"github.com/devstats-lab/devstats/internal/projection"
)

const defaultWarmWorkers = 4

// WarmReport summarizes one warm run.
type WarmReport struct {
	Warmed   int           `json:"warmed"`
	Failed   int           `json:"failed"`
	Details  int           `json:"detail_pages"`
	Duration time.Duration `json:"duration"`
}

// Warmer eagerly regenerates every cache entry the read path serves.
type Warmer struct {
	svc             *projection.Service
	detailThreshold int64
	workerCount     int
	mu              sync.Mutex // one warm run at a time
}

// WarmerOptions configures NewWarmer.
type WarmerOptions struct {
	// DetailThreshold is the minimum device count for a value to get its
	// info entry and detail page warmed.
	DetailThreshold int64
	WorkerCount     int
}

func NewWarmer(svc *projection.Service, opts WarmerOptions) *Warmer {
	if svc == nil {
		panic("aggregation: projection service must not be nil")
	}
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = defaultWarmWorkers
	}
	return &Warmer{
		svc:             svc,
		detailThreshold: opts.DetailThreshold,
		workerCount:     opts.WorkerCount,
	}
}

// detailTarget is one (field, value, window) whose info entry needs warming.
type detailTarget struct {
	field v1.Dimension
	value string
	days  int
	page  bool
}

// WarmAll force-refreshes every dimension for every window, the active
// counts, the index page, and the info entries and detail pages of values
// with at least DetailThreshold devices. A failed key is logged and
// counted; the run moves on to the next key.
func (w *Warmer) WarmAll(ctx context.Context) WarmReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	var report WarmReport
	var targets []detailTarget

	record := func(key string, err error) bool {
		if err != nil {
			report.Failed++
			slog.Error("[Warmer] Failed to warm cache entry", "key", key, "error", err)
			return false
		}
		report.Warmed++
		return true
	}

	defaultDays := w.svc.DefaultWindow()
	for _, days := range w.svc.Windows() {
		if ctx.Err() != nil {
			break
		}

		_, err := w.svc.Count(ctx, days, nil, true)
		record("count", err)

		for _, dim := range v1.Dimensions {
			res, err := w.svc.Popular(ctx, dim, days, true)
			if !record(string(dim), err) {
				continue
			}
			for _, row := range res.Rows {
				if row.Count < w.detailThreshold {
					// Rows are sorted by count.
					break
				}
				targets = append(targets, detailTarget{
					field: dim,
					value: row.Value,
					days:  days,
					page:  days == defaultDays,
				})
			}
		}
	}

	if ctx.Err() == nil {
		_, err := w.svc.IndexPage(ctx, true)
		record("index", err)
	}

	warmed, failed, pages := w.warmDetails(ctx, targets)
	report.Warmed += warmed
	report.Failed += failed
	report.Details = pages

	report.Duration = time.Since(start)
	metrics.RecordWarm(report.Duration, report.Warmed, report.Failed)
	slog.Info("[Warmer] Warm run complete",
		"warmed", report.Warmed,
		"failed", report.Failed,
		"detail_pages", report.Details,
		"duration", report.Duration,
	)
	return report
}

// warmDetails fans the per-value work out to a fixed worker pool.
func (w *Warmer) warmDetails(ctx context.Context, targets []detailTarget) (warmed, failed, pages int) {
	if len(targets) == 0 {
		return 0, 0, 0
	}

	workerCount := w.workerCount
	if len(targets) < workerCount {
		workerCount = len(targets)
	}

	jobs := make(chan detailTarget, len(targets))
	for _, t := range targets {
		jobs <- t
	}
	close(jobs)

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			for t := range jobs {
				if ctx.Err() != nil {
					return
				}
				ok, pageOK := w.warmDetail(ctx, t)

				mu.Lock()
				if ok {
					warmed++
				} else {
					failed++
				}
				if t.page {
					if pageOK {
						warmed++
						pages++
					} else {
						failed++
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return warmed, failed, pages
}

func (w *Warmer) warmDetail(ctx context.Context, t detailTarget) (infoOK, pageOK bool) {
	if _, err := w.svc.Info(ctx, t.field, t.value, t.days, true); err != nil {
		slog.Error("[Warmer] Failed to warm info entry",
			"field", t.field, "value", t.value, "days", t.days, "error", err)
		return false, false
	}
	if !t.page {
		return true, false
	}
	if _, err := w.svc.DetailPage(ctx, t.field, t.value, true); err != nil {
		slog.Error("[Warmer] Failed to warm detail page",
			"field", t.field, "value", t.value, "error", err)
		return true, false
	}
	return true, true
}
