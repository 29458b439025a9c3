// Package observability provides structured logging, Prometheus metrics,
// health probes and graceful shutdown for the Farmhand API server.
package observability
