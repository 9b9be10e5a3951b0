package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/api/v1/popular/:field/:days", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/popular/:field/:days", "200"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/popular/model/90", nil))

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/popular/:field/:days", "200"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(CacheComputeErrors)
	RecordCacheCompute(10*time.Millisecond, errors.New("boom"))
	RecordCacheCompute(10*time.Millisecond, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(CacheComputeErrors))

	skipped := testutil.ToFloat64(DeviceStateWrites.WithLabelValues("skipped"))
	RecordDeviceStateWrite(false)
	assert.Equal(t, skipped+1, testutil.ToFloat64(DeviceStateWrites.WithLabelValues("skipped")))

	warmed := testutil.ToFloat64(WarmKeys.WithLabelValues("warmed"))
	RecordWarm(time.Second, 12, 1)
	assert.Equal(t, warmed+12, testutil.ToFloat64(WarmKeys.WithLabelValues("warmed")))
}
