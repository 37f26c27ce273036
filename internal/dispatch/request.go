package dispatch

import (
	"github.com/svcmock/restdispatch/pkg/domain"
	"github.com/svcmock/restdispatch/pkg/store"
)

// EvalRequest is the subset of an incoming request an Evaluator needs:
// the resolved URI pattern and concrete path (for pattern-based
// strategies), the full request URI including query string (for
// URI_PARAMS), and the request itself (for SCRIPT/JSON_BODY, which see
// headers, body, and method too).
type EvalRequest struct {
	Pattern     string
	Path        string
	FullURI     string
	Request     domain.EvaluableRequest
	ServiceID   string
	OperationID string
	// State is the SCRIPT dispatcher's "store" binding, scoped to
	// ServiceID. May be nil when no ServiceStateRepository is configured.
	State *store.ServiceStateStore
}

// Evaluator computes a dispatch criterion from dispatcher rules and a
// request. ok is false when the rules or request could not be evaluated
// (malformed rules, script error, JSON parse failure); the caller must
// treat that the same as "no criterion", never as a hard error.
type Evaluator interface {
	Evaluate(rules string, req EvalRequest) (criteria string, reqCtx map[string]any, ok bool)
}
