package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/http/middleware"
)

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	// Always false.
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Error string `json:"error" example:"request not found"`
}

// DataResponse is the generic success envelope {success, data}.
type DataResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

// MessageDataResponse is {success, message, data}, used by the create
// endpoints that also return a confirmation text.
type MessageDataResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Request Sent"`
	Data    any    `json:"data"`
}

// fail aborts the request with a structured error. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("error", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Error:     msg,
	})
}

// failErr maps a service error with errorStatus and fails with its text.
func failErr(c *gin.Context, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	fail(c, status, code, msg)
}

// Fail is the exported variant of fail for router-level responses.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

func okData(c *gin.Context, data any) {
	ok(c, DataResponse{Success: true, Data: data})
}
