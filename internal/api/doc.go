// Package api implements the exporter's HTTP surface.
//
// New(opts) returns an http.Handler that serves:
//
//	GET /           HTML landing page linking to the metrics path
//	GET /healthz    JSON liveness: status and configured bot names
//	GET {metrics}   Prometheus exposition of opts.Gatherer (default /metrics)
//
// /healthz never triggers a scrape of the Bot API; only the metrics path does.
// No external HTTP framework is used.
package api
