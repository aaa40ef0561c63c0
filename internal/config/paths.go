package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute locations the application reads and writes
type Paths struct {
	BaseDir        string
	LogsDir        string
	HistoricalFile string
	ForecastFile   string
}

// GetPaths resolves every configured path against BaseDir
func (c *Config) GetPaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}

	return &Paths{
		BaseDir:        base,
		LogsDir:        resolve(base, c.Paths.LogsDir),
		HistoricalFile: resolve(base, c.Data.HistoricalPath),
		ForecastFile:   resolve(base, c.Data.ForecastPath),
	}, nil
}

// resolve joins relative paths onto base and cleans absolute ones
func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LogPathResolution logs the resolved paths for startup debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("historical_file", p.HistoricalFile),
		slog.Bool("historical_exists", FileExists(p.HistoricalFile)),
		slog.String("forecast_file", p.ForecastFile),
		slog.Bool("forecast_exists", FileExists(p.ForecastFile)),
	)
}
