package projection

import (
	"errors"
	"log/slog"
	"net/http"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	coreagg "github.com/devstats-lab/devstats/internal/core/aggregation"
	httperr "github.com/devstats-lab/devstats/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// RegisterRoutes registers the query API and page routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api/v1")
	api.GET("/popular/:field/:days", s.HandlePopular)
	api.GET("/count/:days", s.HandleCount)
	api.GET("/info/:field/:value", s.HandleInfo)

	r.GET("/", s.HandleIndexPage)
	r.GET("/view/:field/:value", s.HandleDetailPage)
}

// HandlePopular handles GET /api/v1/popular/:field/:days[?limit=N].
// Unknown fields, unserved windows and empty results answer {}.
func (s *Service) HandlePopular(c *gin.Context) {
	var uri popularURI
	var query popularQuery
	if err := c.ShouldBindUri(&uri); err != nil {
		writeBindError(c, "Invalid path parameters", err)
		return
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBindError(c, "Invalid query parameters", err)
		return
	}

	days, err := coreagg.ParseWindowDays(uri.Days)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	limit := s.topN
	if query.Limit != nil {
		if *query.Limit <= 0 {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "limit must be a positive integer",
			})
			return
		}
		limit = *query.Limit
	}

	dim, err := v1.ParseDimension(uri.Field)
	if err != nil || !s.Serves(days) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	res, err := s.Popular(c.Request.Context(), dim, days, false)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	if res.Empty() {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, PopularResponse{Result: res.Top(limit)})
}

// HandleCount handles GET /api/v1/count/:days[?field=&value=].
func (s *Service) HandleCount(c *gin.Context) {
	var query countQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBindError(c, "Invalid query parameters", err)
		return
	}

	days, err := coreagg.ParseWindowDays(c.Param("days"))
	if err != nil {
		writeQueryError(c, err)
		return
	}
	if !s.Serves(days) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	var filter *v1.Filter
	if query.Field != "" {
		dim, err := v1.ParseDimension(query.Field)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		filter = &v1.Filter{Field: dim, Value: query.Value}
	}

	total, err := s.Count(c.Request.Context(), days, filter, false)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Total: total})
}

// HandleInfo handles GET /api/v1/info/:field/:value[?days=N].
func (s *Service) HandleInfo(c *gin.Context) {
	var uri infoURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeBindError(c, "Invalid path parameters", err)
		return
	}

	days := s.DefaultWindow()
	if raw := c.Query("days"); raw != "" {
		parsed, err := coreagg.ParseWindowDays(raw)
		if err != nil {
			writeQueryError(c, err)
			return
		}
		days = parsed
	}

	dim, err := v1.ParseDimension(uri.Field)
	if err != nil || !s.Serves(days) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	info, err := s.Info(c.Request.Context(), dim, uri.Value, days, false)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	if info.Total == 0 {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, info)
}

// HandleIndexPage handles GET /.
func (s *Service) HandleIndexPage(c *gin.Context) {
	page, err := s.IndexPage(c.Request.Context(), false)
	if err != nil {
		slog.Error("[Projection] Failed to render index page", "error", err)
		c.String(http.StatusInternalServerError, "Statistics are temporarily unavailable.")
		return
	}
	c.Data(http.StatusOK, htmlContentType, page)
}

// HandleDetailPage handles GET /view/:field/:value. Only pages generated by
// the warm job are served; anything else gets the placeholder page.
func (s *Service) HandleDetailPage(c *gin.Context) {
	field, value := c.Param("field"), c.Param("value")

	if dim, err := v1.ParseDimension(field); err == nil {
		page, ok, err := s.CachedDetailPage(c.Request.Context(), dim, value)
		if err != nil {
			slog.Warn("[Projection] Detail page lookup failed", "field", field, "value", value, "error", err)
		}
		if ok {
			c.Data(http.StatusOK, htmlContentType, page)
			return
		}
	}

	page, err := s.PendingPage(field, value)
	if err != nil {
		slog.Error("[Projection] Failed to render placeholder page", "error", err)
		c.String(http.StatusInternalServerError, "Statistics are temporarily unavailable.")
		return
	}
	c.Data(http.StatusOK, htmlContentType, page)
}

func writeBindError(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   message,
		Details:   err.Error(),
	})
}

func writeQueryError(c *gin.Context, err error) {
	if errors.Is(err, coreagg.ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid aggregate query",
			Details:   err.Error(),
		})
		return
	}

	slog.Error("[Projection] Aggregate query failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to compute aggregate",
	})
}
