// Package metrics provides Prometheus-compatible metrics collection for
// the REST mock dispatch engine.
//
// This package implements the Prometheus text exposition format (text/plain; version=0.0.4)
// without any external dependencies, using only the standard library.
//
// Supported metric types:
//   - Counter: monotonically increasing value (e.g., request counts)
//   - Gauge: value that can go up or down (e.g., services loaded)
//   - Histogram: distribution of values with configurable buckets (e.g., latencies)
//
// All metrics are thread-safe and can be updated from multiple goroutines.
//
// # Default Metrics
//
// The package provides pre-defined metrics for tracking dispatch activity,
// registered by Init() (see defaults.go):
//
//   - restdispatch_requests_total: Counter for dispatched requests (labels: method, service, status)
//   - restdispatch_request_duration_seconds: Histogram for dispatch latency, including
//     any configured artificial delay (labels: method, service)
//   - restdispatch_dispatch_misses_total: Counter for requests where a dispatcher was
//     configured but no response matched (labels: service, operation)
//   - restdispatch_proxy_forwards_total: Counter for requests forwarded upstream by a
//     Proxy Decider (labels: service, status)
//   - restdispatch_invocation_events_total: Counter for invocation-accounting events
//     published to the telemetry sink (labels: service)
//   - restdispatch_services_loaded: Gauge for the number of services registered
//   - restdispatch_uptime_seconds: Gauge for server uptime, updated by the runtime collector
//
// # Label Conventions
//
// Label values are recorded as the caller passes them: HTTP method labels
// are uppercase (GET, POST, ...), and service and operation labels carry
// the service and operation names unchanged.
//
// # Usage
//
//	// Initialize the default metrics registry
//	registry := metrics.Init()
//
//	if vec, err := metrics.RequestsTotal.WithLabels("GET", "orders", "200"); err == nil {
//	    _ = vec.Inc()
//	}
//	if vec, err := metrics.RequestDuration.WithLabels("GET", "orders"); err == nil {
//	    vec.Observe(0.123)
//	}
//
//	// Register the /metrics endpoint
//	http.Handle("/metrics", registry.Handler())
//
// Custom metrics can also be created:
//
//	registry := metrics.NewRegistry()
//	counter := registry.NewCounter("my_counter", "Description of counter", "label1", "label2")
//	if vec, err := counter.WithLabels("value1", "value2"); err == nil {
//	    _ = vec.Inc()
//	}
package metrics
