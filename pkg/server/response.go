package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-assistant/pkg/llm"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/nikogura/job-assistant/pkg/tracker"
	"github.com/pkg/errors"
)

const requestIDKey = "RequestID"

// Response is the JSON envelope of every API reply.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail describes a failure in machine-readable form.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	Upstream  string `json:"upstream,omitempty"`
	Retryable bool   `json:"retryable"`
	Attempts  int    `json:"attempts,omitempty"`
}

// APIError is an error with a fixed HTTP status, raised by handlers.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() (msg string) {
	msg = e.Message
	return msg
}

func badRequest(message string) (err *APIError) {
	err = &APIError{Status: http.StatusBadRequest, Kind: "input", Message: message}
	return err
}

func success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

func failure(c *gin.Context, code int, message string, detail interface{}) {
	c.AbortWithStatusJSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     detail,
		RequestID: c.GetString(requestIDKey),
	})
}

// classify maps an error to an HTTP status, a user-facing message and a detail object.
func classify(err error) (code int, message string, detail ErrorDetail) {
	var terr *tailor.Error
	var apiErr *APIError

	switch {
	case errors.As(err, &terr):
		message = terr.UserMessage()
		detail = ErrorDetail{
			Kind:      string(terr.Kind),
			Upstream:  string(terr.Upstream),
			Retryable: terr.Retryable(),
			Attempts:  terr.Attempts,
		}
		code = tailorStatus(terr)

	case errors.As(err, &apiErr):
		code = apiErr.Status
		message = apiErr.Message
		detail = ErrorDetail{Kind: apiErr.Kind}

	case errors.Is(err, tracker.ErrNotFound):
		code = http.StatusNotFound
		message = "Application not found"
		detail = ErrorDetail{Kind: "not_found"}

	case errors.Is(err, tracker.ErrInvalid):
		code = http.StatusBadRequest
		message = err.Error()
		detail = ErrorDetail{Kind: "input"}

	default:
		code = http.StatusInternalServerError
		message = "An unexpected error occurred. Please try again later."
		detail = ErrorDetail{Kind: "internal"}
	}

	return code, message, detail
}

func tailorStatus(e *tailor.Error) (code int) {
	switch e.Kind {
	case tailor.KindInput:
		code = http.StatusBadRequest
	case tailor.KindConfiguration:
		code = http.StatusInternalServerError
	case tailor.KindUpstream:
		switch e.Upstream {
		case llm.KindAuth:
			code = http.StatusUnauthorized
		case llm.KindQuota:
			code = http.StatusPaymentRequired
		case llm.KindRateLimited:
			code = http.StatusTooManyRequests
		case llm.KindTimeout:
			code = http.StatusGatewayTimeout
		default:
			code = http.StatusBadGateway
		}
	case tailor.KindParse, tailor.KindValidation:
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
	}
	return code
}
