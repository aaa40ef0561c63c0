// Package app wires the dashboard together and manages its lifecycle.
//
// Startup order:
//
//  1. Load configuration (defaults, YAML file, DASH_* environment)
//  2. Initialize logging and OpenTelemetry
//  3. Build services, middleware and routes
//  4. Load both spreadsheets; any load error aborts startup
//  5. Serve until SIGINT or SIGTERM, then shut down gracefully
//
// The package never calls os.Exit; main decides the exit code.
package app
