package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in the error_code extension of every problem response
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeUpgradeRequired   = "WEBSOCKET_UPGRADE_REQUIRED"
	CodeDataNotLoaded     = "DATA_NOT_LOADED"
)

// APIError is an error a handler can return directly to the client
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render sets the response status for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates an APIError without details
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError whose details end up in the problem body
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

var (
	// ErrRateLimitExceeded is returned by the server-wide limiter
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// ErrUpgradeRequired answers plain HTTP requests to the session endpoint
	ErrUpgradeRequired = New(http.StatusBadRequest, CodeUpgradeRequired, "WebSocket upgrade required")

	// ErrDataNotLoaded is returned while no dataset is attached
	ErrDataNotLoaded = New(http.StatusServiceUnavailable, CodeDataNotLoaded, "Demand data has not been loaded")
)

// InvalidRequestWithError reports a malformed request body or query
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ValidationError names one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every rejected field of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ErrValidation rejects a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationError{Field: field, Message: message})
}

// NewValidationErrors rejects several fields at once
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationErrors{Errors: errors})
}
