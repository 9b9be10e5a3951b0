package ingestion

import (
	"github.com/gin-gonic/gin"
)

type Service struct {
	recorder         *Recorder
	maxBodySizeBytes int
}

func NewService(recorder *Recorder, maxBodySizeKB int) *Service {
	if recorder == nil {
		panic("ingestion: recorder must not be nil")
	}
	if maxBodySizeKB <= 0 {
		maxBodySizeKB = 16
	}
	return &Service{
		recorder:         recorder,
		maxBodySizeBytes: maxBodySizeKB * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/v1/stats", s.IngestHandler)
}
