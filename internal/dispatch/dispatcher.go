package dispatch

import (
	"log/slog"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// Dispatcher evaluates dispatch criteria for every supported strategy. It
// is safe for concurrent use.
type Dispatcher struct {
	logger *slog.Logger

	sequence    Evaluator
	uriParts    Evaluator
	uriParams   Evaluator
	uriElements Evaluator
	script      Evaluator
	jsonBody    Evaluator
}

// New creates a Dispatcher. logger must not be nil.
func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger:      logger,
		sequence:    sequenceEvaluator{},
		uriParts:    sequenceEvaluator{},
		uriParams:   uriParamsEvaluator{},
		uriElements: uriElementsEvaluator{},
		script:      newScriptEvaluator(logger),
		jsonBody:    newJSONBodyEvaluator(logger),
	}
}

// Evaluate computes a DispatchContext for the given dispatcher/rules pair
// against req, implementing the strategy table of spec.md §4.2. An empty
// dispatcher yields a null criterion (no dispatcher configured). A failed
// evaluation is logged by the underlying evaluator and also yields a null
// criterion — never an error — per the documented error policy.
func (d *Dispatcher) Evaluate(dispatcher domain.Dispatcher, rules string, req EvalRequest) domain.DispatchContext {
	evaluator := d.evaluatorFor(dispatcher)
	if evaluator == nil {
		return domain.DispatchContext{}
	}

	criteria, reqCtx, ok := evaluator.Evaluate(rules, req)
	if !ok {
		d.logger.Error("dispatch evaluation failed",
			"dispatcher", string(dispatcher), "operationId", req.OperationID)
		return domain.DispatchContext{}
	}

	return domain.DispatchContext{DispatchCriteria: &criteria, RequestContext: reqCtx}
}

func (d *Dispatcher) evaluatorFor(dispatcher domain.Dispatcher) Evaluator {
	switch dispatcher {
	case domain.DispatcherSequence:
		return d.sequence
	case domain.DispatcherURIParts:
		return d.uriParts
	case domain.DispatcherURIParams:
		return d.uriParams
	case domain.DispatcherURIElements:
		return d.uriElements
	case domain.DispatcherScript:
		return d.script
	case domain.DispatcherJSONBody:
		return d.jsonBody
	default:
		return nil
	}
}
