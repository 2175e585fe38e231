// Package monitoring provides Prometheus metrics for the terminal backend.
//
// Metrics cover the HTTP surface (request counts and latency), session
// lifecycle (created, active, reaped), one-shot command execution, and
// interactive shell activity. Exposition happens via the standard /metrics
// endpoint using promhttp.
package monitoring
