package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// jsonEvaluationSpec is the JSON_BODY dispatcher's rules grammar: a JSON
// pointer/JSONPath expression to evaluate against the request body, an
// operator describing how to compare the extracted value against each
// case's key, and the set of cases mapping a matched key to the
// dispatch-criteria string it selects. A "default" case is used when no
// other case matches.
type jsonEvaluationSpec struct {
	Exp      string            `json:"exp"`
	Operator string            `json:"operator"`
	Cases    map[string]string `json:"cases"`
}

const jsonBodyDefaultCase = "default"

// jsonBodyEvaluator implements JSON_BODY: rules is parsed as a
// jsonEvaluationSpec, exp is evaluated against the body via a JSONPath
// expression, and the extracted value is matched against Cases per
// Operator to yield the winning case's dispatch criteria.
type jsonBodyEvaluator struct {
	logger *slog.Logger
}

func newJSONBodyEvaluator(logger *slog.Logger) *jsonBodyEvaluator {
	return &jsonBodyEvaluator{logger: logger}
}

func (e *jsonBodyEvaluator) Evaluate(rules string, req EvalRequest) (string, map[string]any, bool) {
	var spec jsonEvaluationSpec
	if err := json.Unmarshal([]byte(rules), &spec); err != nil {
		e.logger.Error("json_body dispatcher: malformed rules", "error", err, "operationId", req.OperationID)
		return "", nil, false
	}

	var body any
	if err := json.Unmarshal([]byte(req.Request.Body), &body); err != nil {
		e.logger.Error("json_body dispatcher: malformed body", "error", err, "operationId", req.OperationID)
		return "", nil, false
	}

	path, err := jp.ParseString(spec.Exp)
	if err != nil {
		e.logger.Error("json_body dispatcher: malformed exp", "exp", spec.Exp, "error", err, "operationId", req.OperationID)
		return "", nil, false
	}

	results := path.Get(body)
	var value any
	if len(results) > 0 {
		value = results[0]
	}

	criteria, matched := matchCase(spec, value)
	if !matched {
		criteria, matched = spec.Cases[jsonBodyDefaultCase]
		if !matched {
			return "", nil, true
		}
	}
	return criteria, nil, true
}

func matchCase(spec jsonEvaluationSpec, value any) (string, bool) {
	operator := strings.ToUpper(strings.TrimSpace(spec.Operator))
	for key, criteria := range spec.Cases {
		if key == jsonBodyDefaultCase {
			continue
		}
		if caseMatches(operator, key, value) {
			return criteria, true
		}
	}
	return "", false
}

func caseMatches(operator, key string, value any) bool {
	switch operator {
	case "", "EQUALS":
		return fmt.Sprintf("%v", value) == key
	case "REGEXP":
		re, err := regexp.Compile(key)
		if err != nil {
			return false
		}
		return re.MatchString(fmt.Sprintf("%v", value))
	case "SIZE":
		return sizeMatches(key, value)
	case "RANGE":
		return rangeMatches(key, value)
	default:
		return false
	}
}

func sizeMatches(key string, value any) bool {
	want, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return false
	}
	switch v := value.(type) {
	case []any:
		return len(v) == want
	case string:
		return len(v) == want
	case map[string]any:
		return len(v) == want
	default:
		return false
	}
}

// rangeMatches supports a "low-high" range key, matching numeric values
// within [low, high] inclusive.
func rangeMatches(key string, value any) bool {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return false
	}
	low, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	high, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return false
	}
	num, ok := toFloat(value)
	if !ok {
		return false
	}
	return num >= low && num <= high
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
