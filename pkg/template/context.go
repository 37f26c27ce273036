package template

import (
	"encoding/json"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// Context holds the data available to a template expression: the
// inbound request and whatever a SCRIPT dispatcher published into its
// requestContext map (spec §4.2's evaluation-order requirement: SCRIPT
// runs before templating, so its writes are visible here).
type Context struct {
	Request        RequestContext
	RequestContext map[string]any
}

// RequestContext mirrors domain.EvaluableRequest with the body
// pre-parsed for {{request.body.*}} field access.
type RequestContext struct {
	Method        string
	Path          string
	Body          any // parsed JSON, or nil if the body isn't JSON
	RawBody       string
	Query         map[string][]string
	Headers       map[string][]string
	PathVariables map[string]string
}

// NewContext builds a template Context from the request the dispatcher
// resolved and the requestContext map a SCRIPT dispatcher may have
// populated (nil if none ran).
func NewContext(req domain.EvaluableRequest, requestContext map[string]any) *Context {
	ctx := &Context{
		Request: RequestContext{
			Method:        req.Method,
			Path:          req.Path,
			RawBody:       req.Body,
			Query:         req.QueryParams,
			Headers:       req.Headers,
			PathVariables: req.PathVariables,
		},
		RequestContext: requestContext,
	}

	if len(req.Body) > 0 {
		var parsed any
		if err := json.Unmarshal([]byte(req.Body), &parsed); err == nil {
			ctx.Request.Body = parsed
		}
	}

	return ctx
}
