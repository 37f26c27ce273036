package matching

import (
	"encoding/json"

	"github.com/ohler55/ojg/jp"
)

// EvaluateJSONPointer parses body as JSON and evaluates a JSONPath/JSON
// pointer expression against it, returning the first matched value.
// Returns (nil, false) when body is not valid JSON, the expression cannot
// be parsed, or it matches nothing.
func EvaluateJSONPointer(body []byte, expr string) (any, bool) {
	if len(body) == 0 || expr == "" {
		return nil, false
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false
	}

	path, err := jp.ParseString(expr)
	if err != nil {
		return nil, false
	}

	results := path.Get(data)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}
