// Package middleware holds the HTTP middleware chain of the dashboard:
// request IDs, rate limiting, timeouts, CORS, security headers,
// OpenTelemetry instrumentation and request validation.
package middleware
