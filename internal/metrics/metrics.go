package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devstats"

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Ingestion outcomes: accepted, denied, invalid, failed.
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_events_total",
			Help:      "Stats submissions by outcome",
		},
		[]string{"outcome"},
	)

	DeviceStateWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_state_writes_total",
			Help:      "Conditional device state upserts by result",
		},
		[]string{"result"},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result: hit, miss, stale, forced",
		},
		[]string{"result"},
	)

	CacheComputeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_compute_errors_total",
			Help:      "Cache recomputations that failed",
		},
	)

	CacheComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_compute_duration_seconds",
			Help:      "Time spent recomputing a cache entry",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Batch jobs
	WarmKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warm_keys_total",
			Help:      "Keys processed by the cache warm job by result",
		},
		[]string{"result"},
	)

	WarmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "warm_duration_seconds",
			Help:      "Duration of a full cache warm run",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	RetentionDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_deleted_total",
			Help:      "Rows removed by the retention sweep",
		},
		[]string{"table"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordIngest records the outcome of one submission.
func RecordIngest(outcome string) {
	IngestTotal.WithLabelValues(outcome).Inc()
}

// RecordDeviceStateWrite records whether a conditional upsert was applied.
func RecordDeviceStateWrite(applied bool) {
	if applied {
		DeviceStateWrites.WithLabelValues("applied").Inc()
		return
	}
	DeviceStateWrites.WithLabelValues("skipped").Inc()
}

// RecordCacheLookup records a cache lookup result.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheCompute records one recomputation.
func RecordCacheCompute(duration time.Duration, err error) {
	CacheComputeDuration.Observe(duration.Seconds())
	if err != nil {
		CacheComputeErrors.Inc()
	}
}

// RecordWarm records a completed warm run.
func RecordWarm(duration time.Duration, warmed, failed int) {
	WarmDuration.Observe(duration.Seconds())
	WarmKeys.WithLabelValues("warmed").Add(float64(warmed))
	WarmKeys.WithLabelValues("failed").Add(float64(failed))
}

// RecordRetention records rows removed from table.
func RecordRetention(table string, n int64) {
	RetentionDeleted.WithLabelValues(table).Add(float64(n))
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RecordAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
