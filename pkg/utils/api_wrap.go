package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps the error taxonomy onto HTTP responses. Validation
// and empty-result failures are client-visible with their structured
// context; dependency failures collapse to 502/500 without leaking upstream
// detail.
func HandleServiceError(c *gin.Context, err error) {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		log.Printf("Unclassified error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch pe.Kind {
	case KindValidation:
		RespondError(c, http.StatusBadRequest, pe.Error())
	case KindEmptyResult:
		RespondError(c, http.StatusNotFound, "No venues match the requested profile")
	case KindDependencyUnavailable:
		log.Printf("Dependency unavailable: %v", err)
		RespondError(c, http.StatusBadGateway, "A required upstream service is unavailable")
	case KindDependencyRejected:
		log.Printf("Dependency rejected request: %v", err)
		RespondError(c, http.StatusBadGateway, "A required upstream service rejected the request")
	default:
		log.Printf("Pipeline error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
