package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "fruitdash/internal/errors"
	mw "fruitdash/internal/middleware"
	"fruitdash/internal/shared/testutil"
)

func TestClientLogHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantMsg    string
	}{
		{
			name:       "error from page",
			body:       `{"level":"error","message":"Chart is not defined","source":"dashboard"}`,
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelError,
			wantMsg:    "Chart is not defined",
		},
		{
			name:       "level defaults to info",
			body:       `{"message":"page loaded"}`,
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelInfo,
			wantMsg:    "page loaded",
		},
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing message", body: `{"level":"warn"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown level", body: `{"level":"fatal","message":"x"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewClientLogHandler(mw.NewValidator(logger), logger, apierrors.NewErrorHandler(logger, false))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/client-log", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			h.Handle(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				testutil.AssertLogContains(t, logs, tt.wantLevel, tt.wantMsg)
			}
		})
	}
}
