// Package observability groups the logging, metrics and tracing helpers used
// by the refresher.
//
// Subpackages:
//   - logging: slog setup and context propagation of the run-scoped logger
//   - metrics: Prometheus collectors for refresh runs and per-note outcomes
//   - tracing: the OpenTelemetry tracer and an HTTP middleware for the worker servers
package observability
