package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// scriptEvaluator implements SCRIPT: dispatcherRules is compiled and run
// as an expr-lang expression bound to request/requestContext/body/store.
// Compiled programs are cached by expression text, following the
// compile-cache pattern used elsewhere in this codebase for expr-lang
// evaluation.
type scriptEvaluator struct {
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*vm.Program
}

func newScriptEvaluator(logger *slog.Logger) *scriptEvaluator {
	return &scriptEvaluator{logger: logger, cache: make(map[string]*vm.Program)}
}

// scriptRequestContext is the "requestContext" binding handed to SCRIPT
// dispatchers. expr-lang expressions cannot assign into a plain map
// index, so mutation goes through the Set method instead — a script
// writes with `requestContext.Set("key", value)` and reads back the
// published values the same way header/body templating does, via the
// map returned to the caller after Evaluate returns.
type scriptRequestContext map[string]any

// Set stores value under key and returns value, so a call can appear as
// the last statement of a script without discarding its result.
func (c scriptRequestContext) Set(key string, value any) any {
	c[key] = value
	return value
}

// Get returns the value stored under key, or nil if unset.
func (c scriptRequestContext) Get(key string) any {
	return c[key]
}

// Evaluate implements Evaluator, running rules as an expr-lang script.
// req.State may be nil when no ServiceStateRepository is configured.
func (e *scriptEvaluator) Evaluate(rules string, req EvalRequest) (string, map[string]any, bool) {
	program, err := e.compile(rules)
	if err != nil {
		e.logger.Error("script dispatcher: compile failed", "error", err, "operationId", req.OperationID)
		return "", nil, false
	}

	reqCtx := make(scriptRequestContext)
	env := map[string]any{
		"request":        req.Request,
		"requestContext": reqCtx,
		"body":           parseBodyForScript(req.Request.Body),
		"store":          req.State,
	}

	out, err := expr.Run(program, env)
	if err != nil {
		e.logger.Error("script dispatcher: run failed", "error", err, "operationId", req.OperationID)
		return "", nil, false
	}

	criteria, ok := out.(string)
	if !ok {
		criteria = fmt.Sprintf("%v", out)
	}
	return criteria, map[string]any(reqCtx), true
}

func (e *scriptEvaluator) compile(rules string) (*vm.Program, error) {
	e.mu.RLock()
	if p, ok := e.cache[rules]; ok {
		e.mu.RUnlock()
		return p, nil
	}
	e.mu.RUnlock()

	program, err := expr.Compile(rules, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if existing, ok := e.cache[rules]; ok {
		e.mu.Unlock()
		return existing, nil
	}
	e.cache[rules] = program
	e.mu.Unlock()
	return program, nil
}

// parseBodyForScript returns the request body decoded as JSON when
// possible, falling back to the raw string so scripts can still inspect
// non-JSON payloads.
func parseBodyForScript(body string) any {
	if body == "" {
		return body
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return body
	}
	return v
}
