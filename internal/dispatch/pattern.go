package dispatch

import "github.com/svcmock/restdispatch/internal/matching"

// sequenceEvaluator implements SEQUENCE and URI_PARTS: both extract path
// variables from the operation's URI pattern, filtered to the names
// listed in rules.
type sequenceEvaluator struct{}

func (sequenceEvaluator) Evaluate(rules string, req EvalRequest) (string, map[string]any, bool) {
	criteria := matching.ExtractFromURIPattern(rules, req.Pattern, req.Path)
	return criteria, nil, true
}

// uriParamsEvaluator implements URI_PARAMS: extracts query parameters
// listed in rules from the request's full URI.
type uriParamsEvaluator struct{}

func (uriParamsEvaluator) Evaluate(rules string, req EvalRequest) (string, map[string]any, bool) {
	criteria := matching.ExtractFromURIParams(rules, req.FullURI)
	return criteria, nil, true
}

// uriElementsEvaluator implements URI_ELEMENTS: the concatenation of the
// URI_PARTS and URI_PARAMS criteria, pattern first then params.
type uriElementsEvaluator struct{}

func (uriElementsEvaluator) Evaluate(rules string, req EvalRequest) (string, map[string]any, bool) {
	fromPattern := matching.ExtractFromURIPattern(rules, req.Pattern, req.Path)
	fromParams := matching.ExtractFromURIParams(rules, req.FullURI)
	return fromPattern + fromParams, nil, true
}
