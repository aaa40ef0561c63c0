package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		errContains string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "data/2018-2024.xlsx", cfg.Data.HistoricalPath)
				assert.Equal(t, "data/forecast_2025.xlsx", cfg.Data.ForecastPath)
				assert.Equal(t, 2025, cfg.Data.ForecastYear)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "yaml file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
data:
  historical_path: /srv/sales.csv
  forecast_year: 2026
logging:
  level: DEBUG
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "/srv/sales.csv", cfg.Data.HistoricalPath)
				assert.Equal(t, "data/forecast_2025.xlsx", cfg.Data.ForecastPath)
				assert.Equal(t, 2026, cfg.Data.ForecastYear)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"DASH_SERVER_PORT":             "7070",
				"DASH_DATA_FORECAST_PATH":      "forecast.csv",
				"DASH_DATA_FORECAST_SHEET":     "Sheet2",
				"DASH_SECURITY_RATE_LIMIT_RPS": "5",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "forecast.csv", cfg.Data.ForecastPath)
				assert.Equal(t, "Sheet2", cfg.Data.ForecastSheet)
				assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
			},
		},
		{
			name:        "invalid port",
			env:         map[string]string{"DASH_SERVER_PORT": "70000"},
			wantErr:     true,
			errContains: "invalid server port",
		},
		{
			name:        "invalid forecast year",
			env:         map[string]string{"DASH_DATA_FORECAST_YEAR": "25"},
			wantErr:     true,
			errContains: "invalid forecast year",
		},
		{
			name:        "empty historical path",
			file:        "data:\n  historical_path: \"  \"\n",
			wantErr:     true,
			errContains: "historical data path is required",
		},
		{
			name:        "unsupported trace exporter",
			env:         map[string]string{"DASH_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr:     true,
			errContains: "unsupported trace exporter",
		},
		{
			name:        "malformed env value",
			env:         map[string]string{"DASH_SERVER_PORT": "eighty"},
			wantErr:     true,
			errContains: "failed to load config from env",
		},
		{
			name:        "malformed yaml",
			file:        "server: [",
			wantErr:     true,
			errContains: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_UsesConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8181\n")
	t.Setenv("DASH_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestValidate_FileOutputGetsDefaultPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "FILE"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestValidate_WebSocketTimings(t *testing.T) {
	cfg := Default()
	cfg.WebSocket.PingPeriod = cfg.WebSocket.PongWait

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping period")
}

func TestGetPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "forecast.xlsx")

	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Data.ForecastPath = abs

	paths, err := cfg.GetPaths()
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data", "2018-2024.xlsx"), paths.HistoricalFile)
	assert.Equal(t, abs, paths.ForecastFile)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
}

func TestGetPaths_DefaultsToWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	paths, err := Default().GetPaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "data", "forecast_2025.xlsx"), paths.ForecastFile)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
}
