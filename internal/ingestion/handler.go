package ingestion

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	httperr "github.com/devstats-lab/devstats/internal/core/errors"
	"github.com/devstats-lab/devstats/internal/metrics"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgBodyTooLarge   = "Request body exceeds maximum allowed size"
	msgRecordFailed   = "Failed to record stats"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles POST /api/v1/stats. Denylisted devices get the same
// response as accepted ones.
func (s *Service) IngestHandler(c *gin.Context) {
	sub, err := s.parseSubmission(c)
	if err != nil {
		writeError(c, err)
		return
	}

	outcome, recErr := s.recorder.Record(c.Request.Context(), sub)
	if recErr != nil {
		writeError(c, toIngestionError(recErr, sub))
		return
	}

	slog.Debug("[Ingestion] Submission handled", "device_id", sub.DeviceHash, "outcome", outcome)
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// parseSubmission reads the size-limited request body and binds it into a Submission.
func (s *Service) parseSubmission(c *gin.Context) (*v1.Submission, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		metrics.RecordIngest(string(OutcomeInvalid))
		return nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBodyTooLarge,
			details: map[string]interface{}{
				"max_size_kb": maxBytes / 1024,
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var sub v1.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		metrics.RecordIngest(string(OutcomeInvalid))
		return nil, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	return &sub, nil
}

func toIngestionError(err error, sub *v1.Submission) *ingestionError {
	if ve, ok := IsValidationError(err); ok {
		slog.Warn("[Ingestion] Submission failed validation", "field", ve.Field, "error", ve.Message)
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    ve.Error(),
			details:    map[string]string{"field": ve.Field},
		}
	}

	slog.Error("[Ingestion] Failed to record submission", "device_id", sub.DeviceHash, "error", err)
	return &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgRecordFailed,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
