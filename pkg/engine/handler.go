package engine

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/svcmock/restdispatch/internal/dispatch"
	"github.com/svcmock/restdispatch/internal/matching"
	"github.com/svcmock/restdispatch/pkg/config"
	"github.com/svcmock/restdispatch/pkg/domain"
	"github.com/svcmock/restdispatch/pkg/logging"
	"github.com/svcmock/restdispatch/pkg/metrics"
	"github.com/svcmock/restdispatch/pkg/proxy"
	"github.com/svcmock/restdispatch/pkg/store"
	"github.com/svcmock/restdispatch/pkg/telemetry"
	"github.com/svcmock/restdispatch/pkg/template"
	"github.com/svcmock/restdispatch/pkg/tracing"
)

// maxRequestBodySize bounds how much of an incoming request body is
// buffered for dispatch evaluation and templating.
const maxRequestBodySize = 10 << 20

// restPathPattern matches the base HTTP surface of spec §6:
// "/rest/{service}/{version}/**".
var restPathPattern = regexp.MustCompile(`^/rest/([^/]+)/([^/]+)(/.*)?$`)

// Handler is the pipeline orchestrator of spec §4.9: the single HTTP
// entry point that resolves a request against a virtualized service,
// dispatches it to a canned response, and renders the result.
type Handler struct {
	services  store.ServiceRepository
	responses store.ResponseRepository
	states    store.ServiceStateRepository

	dispatcher *dispatch.Dispatcher
	templates  *template.Engine

	proxyClient proxy.Client
	telemetry   telemetry.Sink
	tracer      *tracing.Tracer
	metrics     *metrics.Registry

	config config.Config
	log    *slog.Logger
}

// NewHandler builds a Handler over its required repositories. states may
// be nil when no SCRIPT dispatcher needs cross-request state. logger nil
// defaults to a no-op logger. Everything else — proxy client, telemetry
// sink, tracer, configuration — has a working default and can be
// overridden with the SetXxx methods below.
func NewHandler(services store.ServiceRepository, responses store.ResponseRepository, states store.ServiceStateRepository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{
		services:   services,
		responses:  responses,
		states:     states,
		dispatcher: dispatch.New(logger),
		templates:  template.New(),
		config:     config.Default(),
		log:        logger,
	}
}

// SetConfig overrides the handler's process configuration.
func (h *Handler) SetConfig(cfg config.Config) {
	h.config = cfg
}

// SetProxyClient wires the outbound client used by the Proxy Decider.
func (h *Handler) SetProxyClient(c proxy.Client) {
	h.proxyClient = c
}

// SetTelemetrySink wires where invocation-accounting events are published.
func (h *Handler) SetTelemetrySink(s telemetry.Sink) {
	h.telemetry = s
}

// SetTracer wires the tracer whose current span invocation accounting
// annotates. Typically the same tracer TracingMiddleware starts spans on.
func (h *Handler) SetTracer(t *tracing.Tracer) {
	h.tracer = t
}

// EnableMetrics initializes the default metrics registry (idempotent) and
// wires the handler to record request counts, durations, dispatch misses,
// proxy forwards, and invocation events against it. Returns the registry
// so the caller can mount its Prometheus-format handler at "/metrics".
func (h *Handler) EnableMetrics() *metrics.Registry {
	h.metrics = metrics.Init()
	return h.metrics
}

// ServeHTTP implements the pipeline orchestrator of spec §4.9. Any panic
// from below is recovered into a 500 with an empty body and an ERROR log
// line, per spec §7 — no failure inside the pipeline may crash the server.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	wrapped := &statusCapturingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	serviceLabel := "unknown"

	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("panic recovered in request handler", "panic", rec, "method", r.Method, "path", r.URL.Path)
			if !wrapped.headerWritten {
				wrapped.WriteHeader(http.StatusInternalServerError)
			}
		}
		h.recordRequestMetrics(r.Method, serviceLabel, wrapped.statusCode, startTime)
	}()

	h.dispatch(wrapped, r, &serviceLabel, startTime)
}

// recordRequestMetrics publishes the per-request counter and duration
// observation, when a metrics registry is configured.
func (h *Handler) recordRequestMetrics(method, service string, status int, startTime time.Time) {
	if h.metrics == nil {
		return
	}
	if vec, err := metrics.RequestsTotal.WithLabels(method, service, strconv.Itoa(status)); err == nil {
		_ = vec.Inc()
	}
	if vec, err := metrics.RequestDuration.WithLabels(method, service); err == nil {
		vec.Observe(time.Since(startTime).Seconds())
	}
}

// dispatch is the body of the pipeline orchestrator, run under ServeHTTP's
// panic recovery. w is a status-capturing wrapper so ServeHTTP can label
// metrics with the final status code regardless of which branch returns.
func (h *Handler) dispatch(w *statusCapturingResponseWriter, r *http.Request, serviceLabel *string, startTime time.Time) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var bodyBytes []byte
	if r.Body != nil {
		bodyBytes, _ = io.ReadAll(r.Body)
	}

	serviceName, version, resourcePathRaw, ok := parseRESTPath(r.URL.EscapedPath())
	if !ok {
		http.NotFound(w, r)
		return
	}

	svc, svcOK := h.services.FindByNameAndVersion(serviceName, version)
	if svcOK {
		*serviceLabel = svc.Name
	}

	var op *domain.Operation
	if svcOK {
		op = matching.ResolveOperation(svc, r.Method, resourcePathRaw)
	}

	if op == nil {
		if r.Method == http.MethodOptions && h.config.Mocks.REST.EnableCorsPolicy {
			writeCORSPreflight(w, r, h.config.Mocks.REST.CORS)
			return
		}
		if !svcOK {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, "The service %s with version %s does not exist!", serviceName, version)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}

	resourcePathDecoded, err := url.PathUnescape(resourcePathRaw)
	if err != nil {
		resourcePathDecoded = resourcePathRaw
	}

	pathVariables := matching.ExtractPathVariables(matching.URIPatternFromOperationName(op.Name), resourcePathDecoded)

	if violation, ok := checkParameterConstraints(op.ParameterConstraints, r, pathVariables); !ok {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, "%s. Check parameter constraints.", violation)
		return
	}

	evaluable := domain.EvaluableRequest{
		Body:          string(bodyBytes),
		Path:          resourcePathDecoded,
		Method:        r.Method,
		Headers:       map[string][]string(r.Header),
		QueryParams:   map[string][]string(r.URL.Query()),
		PathVariables: pathVariables,
		Scheme:        requestScheme(r),
		Host:          r.Host,
		Port:          requestPort(r),
		ContextPath:   "",
	}

	fullURI := resourcePathDecoded
	if r.URL.RawQuery != "" {
		fullURI += "?" + r.URL.RawQuery
	}

	operationID := domain.BuildOperationID(svc, *op)

	var state *store.ServiceStateStore
	if h.states != nil {
		state = store.NewServiceStateStore(h.states, svc.ID)
	}

	// Default to the operation's own dispatcher/rules, but a Fallback or
	// Proxy-Fallback spec holds the rules for this first dispatch pass
	// instead, with Proxy-Fallback taking precedence when both are set.
	dispatcherType, dispatcherRules := op.Dispatcher, op.DispatcherRules
	if op.Fallback != nil {
		dispatcherType, dispatcherRules = op.Fallback.Dispatcher, op.Fallback.DispatcherRules
	}
	if op.ProxyFallback != nil {
		dispatcherType, dispatcherRules = op.ProxyFallback.Dispatcher, op.ProxyFallback.DispatcherRules
	}

	dispatchCtx := h.dispatcher.Evaluate(dispatcherType, dispatcherRules, dispatch.EvalRequest{
		Pattern:     matching.URIPatternFromOperationName(op.Name),
		Path:        resourcePathDecoded,
		FullURI:     fullURI,
		Request:     evaluable,
		ServiceID:   svc.ID,
		OperationID: operationID,
		State:       state,
	})
	criteria := dispatchCtx.Criteria()
	accept := r.Header.Get("Accept")

	var selected domain.Response
	var hasSelected bool
	if dispatcherType == "" {
		if all := h.responses.FindByOperationID(operationID); len(all) > 0 {
			selected, hasSelected = negotiateContent(all, accept), true
		}
	} else {
		selected, hasSelected = h.selectResponse(operationID, criteria, accept, op.Fallback)
	}

	if proxyURL, doProxy := decideProxyURL(dispatcherType, dispatcherRules, fullURI, op.ProxyFallback, selected, hasSelected); doProxy {
		h.proxyRequest(w, r, proxyURL, bodyBytes)
		if h.metrics != nil {
			if vec, err := metrics.ProxyForwardsTotal.WithLabels(svc.Name, strconv.Itoa(w.statusCode)); err == nil {
				_ = vec.Inc()
			}
		}
		return
	}

	if !hasSelected {
		if h.metrics != nil && dispatcherType != "" {
			if vec, err := metrics.DispatchMissesTotal.WithLabels(svc.Name, op.Name); err == nil {
				_ = vec.Inc()
			}
		}
		w.WriteHeader(http.StatusBadRequest)
		if dispatcherType != "" {
			_, _ = fmt.Fprintf(w, "The response %s does not exist!", criteria)
		}
		return
	}

	delay := resolveDelay(r.URL.Query().Get("delay"), op.DefaultDelayMs)
	enforceDelay(r.Context(), startTime, delay)

	if h.config.Mocks.EnableInvocationStats {
		id := extractInvocationID(op.IDPath, bodyBytes, resourcePathDecoded)
		recordInvocation(tracing.SpanFromContext(r.Context()), h.telemetry, svc, selected, startTime, id)
		if h.metrics != nil {
			if vec, err := metrics.InvocationEventsTotal.WithLabels(svc.Name); err == nil {
				_ = vec.Inc()
			}
		}
	}

	h.renderResponse(w, selected, evaluable, dispatchCtx.RequestContext, op.ParameterConstraints, renderContext{
		Scheme:      evaluable.Scheme,
		Host:        r.Host,
		ContextPath: evaluable.ContextPath,
		ServiceName: svc.Name,
		Version:     svc.Version,
	})
}

// proxyRequest forwards the request to targetURL and copies the upstream
// response back verbatim, per spec §4.5/§7 ("the core delegates entirely
// to the external HTTP proxy and returns its response untouched").
func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, targetURL string, body []byte) {
	if h.proxyClient == nil {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "no proxy client configured")
		return
	}

	resp, err := h.proxyClient.CallExternal(r.Context(), targetURL, r.Method, r.Header, body, r.RemoteAddr, r.Host)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, err.Error())
		return
	}

	dst := w.Header()
	for name, values := range resp.Headers {
		for _, v := range values {
			dst.Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// parseRESTPath splits an encoded request path of the shape
// "/rest/{service}/{version}/**" into its service name (with "+"
// replaced by a space per spec §4.9), version, and resource path.
// serviceName and version are percent-decoded; resourcePath is returned
// still percent-encoded, matching the literal-comparison asymmetry
// documented in DESIGN.md.
func parseRESTPath(escapedPath string) (serviceName, version, resourcePath string, ok bool) {
	match := restPathPattern.FindStringSubmatch(escapedPath)
	if match == nil {
		return "", "", "", false
	}
	name, err := url.PathUnescape(match[1])
	if err != nil {
		name = match[1]
	}
	name = strings.ReplaceAll(name, "+", " ")

	ver, err := url.PathUnescape(match[2])
	if err != nil {
		ver = match[2]
	}

	resourcePath = match[3]
	if resourcePath == "" {
		resourcePath = "/"
	}
	return name, ver, resourcePath, true
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

func requestPort(r *http.Request) int {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		if port, err := strconv.Atoi(host[idx+1:]); err == nil {
			return port
		}
	}
	if r.TLS != nil {
		return 443
	}
	return 80
}

// checkParameterConstraints validates every ParameterConstraint of an
// operation against the incoming request, per spec §4.6 step 3's
// companion validation pass. Returns (violation description, false) on
// the first failing constraint.
func checkParameterConstraints(constraints []domain.ParameterConstraint, r *http.Request, pathVariables map[string]string) (string, bool) {
	for _, c := range constraints {
		value := parameterValue(c, r, pathVariables)

		if c.Required && value == "" {
			return fmt.Sprintf("Parameter %s is required", c.Name), false
		}
		if value != "" && c.MustMatchRegex != "" {
			re, err := regexp.Compile("^(?:" + c.MustMatchRegex + ")$")
			if err == nil && !re.MatchString(value) {
				return fmt.Sprintf("Parameter %s does not match %s", c.Name, c.MustMatchRegex), false
			}
		}
	}
	return "", true
}

func parameterValue(c domain.ParameterConstraint, r *http.Request, pathVariables map[string]string) string {
	switch c.In {
	case domain.ParameterLocationHeader:
		return r.Header.Get(c.Name)
	case domain.ParameterLocationQuery:
		return r.URL.Query().Get(c.Name)
	case domain.ParameterLocationPath:
		return pathVariables[c.Name]
	default:
		return ""
	}
}
