package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sartorproj/featurespace/errs"
)

// Error codes returned in ErrorDetail.Code.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNonNumeric         = "NON_NUMERIC_INPUT"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondWithError aborts the request with a structured error body.
func RespondWithError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: c.GetString(requestIDKey),
		},
	})
}

// statusOf maps an error to its HTTP status and error code.
func statusOf(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errs.ErrInvalidParameter):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, errs.ErrNonNumericInput):
		return http.StatusBadRequest, ErrCodeNonNumeric
	case errors.Is(err, errs.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, ErrCodeUnsupportedFormat
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// respondError logs err and writes the mapped error response.
func (s *Server) respondError(c *gin.Context, message string, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw(message, "error", err, "request_id", c.GetString(requestIDKey))
	} else {
		s.logger.Debugw(message, "error", err, "request_id", c.GetString(requestIDKey))
	}
	RespondWithError(c, status, code, message, err.Error())
}
