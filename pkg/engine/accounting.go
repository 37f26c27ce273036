package engine

import (
	"fmt"
	"strings"
	"time"

	idgen "github.com/svcmock/restdispatch/internal/id"
	"github.com/svcmock/restdispatch/internal/matching"
	"github.com/svcmock/restdispatch/pkg/domain"
	"github.com/svcmock/restdispatch/pkg/telemetry"
	"github.com/svcmock/restdispatch/pkg/tracing"
)

// extractInvocationID implements the id-extraction half of spec §4.8:
// when idPath is set it is evaluated as a JSON pointer against the
// request body; otherwise the last non-empty path segment is used as a
// best-effort identifier. When neither yields anything (e.g. a request
// against the service root with no idPath configured), a random id is
// generated so every accounting event still carries one.
func extractInvocationID(idPath string, body []byte, resourcePath string) string {
	if idPath != "" {
		if v, ok := matching.EvaluateJSONPointer(body, idPath); ok {
			return formatID(v)
		}
	}
	segments := strings.Split(strings.Trim(resourcePath, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return idgen.Short()
}

func formatID(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// recordInvocation implements the annotation-and-publish half of spec
// §4.8: it tags the current span with the extracted id and publishes an
// invocation event to sink, when accounting is enabled.
func recordInvocation(span *tracing.Span, sink telemetry.Sink, svc domain.Service, resp domain.Response, startTime time.Time, id string) {
	if span != nil {
		span.SetAttribute("requestId", id)
	}
	if sink == nil {
		return
	}
	sink.Publish(telemetry.Event{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Version:     svc.Version,
		Response:    resp,
		StartTime:   startTime,
		ID:          id,
	})
}
