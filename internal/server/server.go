package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/devstats-lab/devstats/internal/aggregation"
	httperr "github.com/devstats-lab/devstats/internal/core/errors"
	"github.com/devstats-lab/devstats/internal/core/storage"
	"github.com/devstats-lab/devstats/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	Engine      *gin.Engine
	Addr        string
	health      storage.Pinger
	readTimeout time.Duration
}

// Options configures New.
type Options struct {
	Mode string // debug | release

	// ReadTimeout bounds reading a request. Zero means no limit.
	ReadTimeout time.Duration

	// Health is pinged by GET /health. Nil reports healthy.
	Health storage.Pinger
}

func New(addr string, opts Options) *Server {
	if opts.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	// Detail page values may contain escaped slashes.
	r.UseRawPath = true
	r.Use(metrics.Middleware())

	s := &Server{
		Engine:      r,
		Addr:        addr,
		health:      opts.Health,
		readTimeout: opts.ReadTimeout,
	}

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// RegisterAdmin mounts POST /admin/v1/cache/warm behind a bearer token. An
// empty token leaves the admin routes unregistered.
func (s *Server) RegisterAdmin(token string, warmer *aggregation.Warmer) {
	if token == "" {
		slog.Info("[Server] Admin token not set, admin routes disabled")
		return
	}
	if warmer == nil {
		panic("server: warmer must not be nil")
	}

	admin := s.Engine.Group("/admin/v1", requireBearer(token))
	admin.POST("/cache/warm", func(c *gin.Context) {
		report := warmer.WarmAll(c.Request.Context())
		if report.Failed > 0 {
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpWarmFailedError,
				Message:   "Some cache entries failed to warm",
				Details:   report,
			})
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

func requireBearer(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnauthorizedError,
				Message:   "Missing or invalid admin token",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			slog.Error("[Server] Health check failed: database unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.Addr,
		Handler:     s.Engine,
		ReadTimeout: s.readTimeout,
	}

	slog.Info("[Server] Starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("[Server] Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Server] HTTP server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
