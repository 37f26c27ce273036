package metrics

import (
	"sync"
	"time"
)

// Default metrics for the REST mock dispatch engine.
// These are initialized by calling Init().
//
// # Label Conventions
//
// Label values are recorded as the caller passes them: HTTP method labels
// are uppercase (GET, POST, ...), and service and operation labels carry
// the service and operation names unchanged.
var (
	// RequestsTotal counts the total number of dispatched requests.
	// Labels: method, service, status
	RequestsTotal *Counter

	// RequestDuration tracks the duration of dispatched requests in
	// seconds, including any artificial delay (§4.7).
	// Labels: method, service
	RequestDuration *Histogram

	// DispatchMissesTotal counts requests for which a dispatcher was
	// configured but no response matched the computed criterion.
	// Labels: service, operation
	DispatchMissesTotal *Counter

	// ProxyForwardsTotal counts requests forwarded to an upstream URL by
	// the Proxy Decider.
	// Labels: service, status
	ProxyForwardsTotal *Counter

	// InvocationEventsTotal counts invocation-accounting events published
	// to the telemetry sink.
	// Labels: service
	InvocationEventsTotal *Counter

	// ServicesLoaded is a gauge of the number of services currently
	// registered in the service repository.
	ServicesLoaded *Gauge

	// UptimeSeconds is a gauge of the server uptime in seconds.
	UptimeSeconds *Gauge

	// RuntimeCollectorInstance is the Go runtime metrics collector.
	RuntimeCollectorInstance *RuntimeCollector

	// runtimeCollectorStop stops the runtime collector goroutine.
	runtimeCollectorStop func()

	// defaultRegistry is the global metrics registry.
	defaultRegistry *Registry

	// initOnce ensures Init() is only called once.
	initOnce sync.Once
)

// Init initializes the default metrics and returns the registry.
// This function is idempotent and safe to call multiple times.
func Init() *Registry {
	initOnce.Do(func() {
		defaultRegistry = NewRegistry()

		RequestsTotal = defaultRegistry.NewCounter(
			"restdispatch_requests_total",
			"Total number of dispatched requests",
			"method", "service", "status",
		)

		RequestDuration = defaultRegistry.NewHistogram(
			"restdispatch_request_duration_seconds",
			"Duration of dispatched requests in seconds",
			DefaultBuckets,
			"method", "service",
		)

		DispatchMissesTotal = defaultRegistry.NewCounter(
			"restdispatch_dispatch_misses_total",
			"Requests with a dispatcher configured but no matching response",
			"service", "operation",
		)

		ProxyForwardsTotal = defaultRegistry.NewCounter(
			"restdispatch_proxy_forwards_total",
			"Total number of requests forwarded upstream",
			"service", "status",
		)

		InvocationEventsTotal = defaultRegistry.NewCounter(
			"restdispatch_invocation_events_total",
			"Total number of invocation-accounting events published",
			"service",
		)

		ServicesLoaded = defaultRegistry.NewGauge(
			"restdispatch_services_loaded",
			"Number of services registered in the service repository",
		)

		UptimeSeconds = defaultRegistry.NewGauge(
			"restdispatch_uptime_seconds",
			"Server uptime in seconds",
		)

		RuntimeCollectorInstance = NewRuntimeCollector(defaultRegistry, UptimeSeconds)
		runtimeCollectorStop = RuntimeCollectorInstance.StartCollector(10 * time.Second)
	})

	return defaultRegistry
}

// DefaultRegistry returns the default metrics registry.
// Returns nil if Init() has not been called.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Reset resets all default metrics. Useful for testing.
// This also resets the initOnce, allowing Init() to be called again.
func Reset() {
	if runtimeCollectorStop != nil {
		runtimeCollectorStop()
		runtimeCollectorStop = nil
	}

	initOnce = sync.Once{}
	defaultRegistry = nil
	RequestsTotal = nil
	RequestDuration = nil
	DispatchMissesTotal = nil
	ProxyForwardsTotal = nil
	InvocationEventsTotal = nil
	ServicesLoaded = nil
	UptimeSeconds = nil
	RuntimeCollectorInstance = nil
}
