package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "year must be an integer", "abc")

	assert.Equal(t, "year must be an integer", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "abc", err.Details)

	var apiErr *APIError
	require.True(t, errors.As(error(err), &apiErr))
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err    *APIError
		status int
		code   string
	}{
		{ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{ErrUpgradeRequired, http.StatusBadRequest, "WEBSOCKET_UPGRADE_REQUIRED"},
		{ErrDataNotLoaded, http.StatusServiceUnavailable, "DATA_NOT_LOADED"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestValidationHelpers(t *testing.T) {
	single := ErrValidation("mode", "must be one of historical forecast")
	assert.Equal(t, ValidationError{Field: "mode", Message: "must be one of historical forecast"}, single.Details)

	multi := NewValidationErrors([]ValidationError{{Field: "years[0]", Message: "too small"}})
	assert.Equal(t, "VALIDATION_FAILED", multi.ErrorCode)
	assert.Len(t, multi.Details.(ValidationErrors).Errors, 1)

	invalid := InvalidRequestWithError(errors.New("bad json"))
	assert.Equal(t, CodeInvalidRequest, invalid.ErrorCode)
	assert.Equal(t, "bad json", invalid.Details)
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	require.NoError(t, render.Render(w, r, ErrDataNotLoaded))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DATA_NOT_LOADED", body["error_code"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "invalid mode", "/api/records").
		WithExtension("trace_id", "abc").
		WithExtension("status", "overridden")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
	assert.Equal(t, "invalid mode", body["detail"])
	assert.Equal(t, "/api/records", body["instance"])
	assert.Equal(t, "abc", body["trace_id"])

	bare, err := json.Marshal(NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", ""))
	require.NoError(t, err)
	assert.NotContains(t, string(bare), "detail")
	assert.NotContains(t, string(bare), "instance")
}
