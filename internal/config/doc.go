// Package config provides centralized configuration management for the dashboard.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//  1. Default() values
//  2. A YAML file (DASH_CONFIG_FILE, or config.yaml / configs/config.yaml)
//  3. Environment variables prefixed with DASH_
//
// # Environment Variables
//
// Nested sections map onto underscore-joined names:
//
//	DASH_SERVER_PORT=8080
//	DASH_DATA_HISTORICAL_PATH=data/2018-2024.xlsx
//	DASH_DATA_FORECAST_PATH=data/forecast_2025.xlsx
//	DASH_DATA_FORECAST_YEAR=2025
//	DASH_LOGGING_LEVEL=debug
//	DASH_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Paths
//
// Relative data and log paths are resolved against Paths.BaseDir (the
// working directory when unset) by GetPaths.
package config
