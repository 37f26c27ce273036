package engine

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/svcmock/restdispatch/pkg/domain"
	"github.com/svcmock/restdispatch/pkg/template"
)

// absoluteURLPattern matches a fully-qualified URL scheme, per spec.
var absoluteURLPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+\-.]*://.*`)

// renderContext carries the pieces of the inbound request the renderer
// needs to rewrite a relative Location header into an absolute one.
type renderContext struct {
	Scheme      string
	Host        string
	ContextPath string
	ServiceName string
	Version     string
}

// renderResponse implements the Response Renderer of spec §4.6: it sets
// Content-Type from the response's media type, recopies constrained
// headers, renders every templated header and the body, and rewrites a
// relative Location header into an absolute URL.
func (h *Handler) renderResponse(w http.ResponseWriter, resp domain.Response, req domain.EvaluableRequest, reqCtx map[string]any, constraints []domain.ParameterConstraint, rc renderContext) {
	header := w.Header()

	if resp.MediaType != "" {
		header.Set("Content-Type", resp.MediaType+";charset=UTF-8")
	}

	for _, c := range constraints {
		if c.In == domain.ParameterLocationHeader && c.Recopy {
			if v := req.Header(c.Name); v != "" {
				header.Set(c.Name, v)
			}
		}
	}

	tmplCtx := template.NewContext(req, reqCtx)

	for _, hdr := range resp.Headers {
		values := make([]string, len(hdr.Values))
		for i, v := range hdr.Values {
			rendered, err := h.templates.Process(v, tmplCtx)
			if err != nil {
				rendered = v
			}
			values[i] = rendered
		}
		h.applyResponseHeader(header, hdr.Name, values, rc)
	}

	status := http.StatusOK
	if resp.Status != "" {
		if n, err := strconv.Atoi(resp.Status); err == nil {
			status = n
		}
	}
	w.WriteHeader(status)

	if resp.Content != "" {
		body, err := h.templates.Process(resp.Content, tmplCtx)
		if err != nil {
			body = resp.Content
		}
		_, _ = w.Write([]byte(body))
	}
}

// applyResponseHeader applies one rendered header per spec §4.6's rules:
// Transfer-Encoding is dropped, a relative Location is rewritten
// absolute, and every other header replaces (never appends to) any
// existing values.
func (h *Handler) applyResponseHeader(header http.Header, name string, values []string, rc renderContext) {
	if strings.EqualFold(name, "Transfer-Encoding") {
		return
	}

	if strings.EqualFold(name, "Location") && len(values) > 0 {
		for i, v := range values {
			if !absoluteURLPattern.MatchString(v) {
				values[i] = rc.Scheme + "://" + rc.Host + rc.ContextPath + "/rest/" + rc.ServiceName + "/" + rc.Version + v
			}
		}
	}

	header.Del(name)
	for _, v := range values {
		header.Add(name, v)
	}
}
