package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitdash/internal/config"
	apierrors "fruitdash/internal/errors"
	"fruitdash/internal/shared/testutil"
	"fruitdash/pkg/contracts/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	historical, forecast := testutil.WriteSampleSources(t, dir)

	cfg := config.Default()
	cfg.Paths.BaseDir = dir
	cfg.Data.HistoricalPath = historical
	cfg.Data.ForecastPath = forecast
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.TraceExporter = "none"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, app *Application, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Dashboard)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.WebSocketHub)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.False(t, app.Dashboard.Loaded())
}

func TestLoadData(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app := newTestApp(t, testConfig(t))

		require.NoError(t, app.LoadData(context.Background()))
		assert.True(t, app.Dashboard.Loaded())
	})

	t.Run("missing forecast file is a load error", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Data.ForecastPath = filepath.Join(t.TempDir(), "missing.xlsx")
		app := newTestApp(t, cfg)

		err := app.LoadData(context.Background())
		require.Error(t, err)
		assert.True(t, apierrors.IsLoadError(err))
		assert.False(t, app.Dashboard.Loaded())
	})

	t.Run("start aborts when data cannot be loaded", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Data.HistoricalPath = filepath.Join(t.TempDir(), "missing.csv")
		cfg.Telemetry.TraceExporter = "stdout"
		app := newTestApp(t, cfg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, before := app.OTelProviders.Tracer.Start(ctx, "before-start")
		require.True(t, before.IsRecording())
		before.End()

		err := app.Start(ctx, cancel)
		require.Error(t, err)
		assert.True(t, apierrors.IsLoadError(err))

		// Telemetry was flushed and shut down on the abort path
		_, after := app.OTelProviders.Tracer.Start(ctx, "after-abort")
		assert.False(t, after.IsRecording())
		after.End()
	})
}

func TestRouter(t *testing.T) {
	t.Run("readiness is 503 before load", func(t *testing.T) {
		app := newTestApp(t, testConfig(t))

		rec := get(t, app, "/api/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = get(t, app, "/api/dashboard?mode=forecast")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	app := newTestApp(t, testConfig(t))
	require.NoError(t, app.LoadData(context.Background()))

	t.Run("readiness is 200 after load", func(t *testing.T) {
		rec := get(t, app, "/api/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty historical selection prompts", func(t *testing.T) {
		rec := get(t, app, "/api/dashboard?mode=historical")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status string               `json:"status"`
			Data   domain.DashboardView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.True(t, body.Data.Chart.Empty)
		assert.True(t, body.Data.Table.Empty)
		assert.Equal(t, domain.PromptSelectYears, body.Data.Chart.Prompt)
		assert.Equal(t, domain.PromptSelectYears, body.Data.Table.Prompt)
		assert.Equal(t, []int{2020, 2021}, body.Data.AvailableYears)
	})

	t.Run("chart and table selections are independent", func(t *testing.T) {
		rec := get(t, app, "/api/dashboard?mode=historical&year=2020&fruit=apple")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data domain.DashboardView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Data.Chart.Empty)
		require.Len(t, body.Data.Chart.Panels, 1)
		assert.Equal(t, 2020, body.Data.Chart.Panels[0].Year)
		assert.True(t, body.Data.Table.Empty)
		assert.Equal(t, domain.PromptSelectTableFruits, body.Data.Table.Prompt)
	})

	t.Run("unknown mode is a problem response", func(t *testing.T) {
		rec := get(t, app, "/api/dashboard?mode=weekly")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "mode")
	})

	t.Run("html page renders", func(t *testing.T) {
		rec := get(t, app, "/?mode=forecast&fruit=apple")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("version", func(t *testing.T) {
		rec := get(t, app, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics exposition", func(t *testing.T) {
		rec := get(t, app, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http_requests_total")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := get(t, app, "/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
