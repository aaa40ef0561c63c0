// Package services implements the business logic layer of the dashboard.
// It sits between the transport handlers and the dataprocessing package.
//
// # Services
//
// DashboardService owns the immutable dataset once it is attached and runs
// the filter pipeline for every request: twice for a dashboard view (chart
// fruits and table fruits are independent), once for a records query. Each
// pipeline invocation gets an OpenTelemetry span and increments
// dashboard_filter_invocations_total{mode,target,empty}.
//
// HealthService answers liveness, readiness and version probes. Readiness
// turns green only after a dataset is attached.
//
// # Errors
//
// ErrDatasetNotLoaded is distinct from an empty result: empty selections are
// reported through DashboardView.Chart.Empty and Table.Empty with a prompt.
package services
