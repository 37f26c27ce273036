package engine

import "github.com/svcmock/restdispatch/pkg/domain"

// selectResponse implements the Response Selector of spec §4.4: it
// resolves criteria (a dispatch criterion or, for SCRIPT/JSON_BODY, a
// response name directly) against the response repository, falling back
// to the operation's Fallback specification when both lookups miss.
func (h *Handler) selectResponse(operationID, criteria, accept string, fallback *domain.FallbackSpecification) (domain.Response, bool) {
	if responses := h.responses.FindByOperationIDAndDispatchCriteria(operationID, criteria); len(responses) > 0 {
		return negotiateContent(responses, accept), true
	}

	if responses := h.responses.FindByOperationIDAndName(operationID, criteria); len(responses) > 0 {
		return negotiateContent(responses, accept), true
	}

	if fallback != nil {
		if responses := h.responses.FindByOperationIDAndName(operationID, fallback.Fallback); len(responses) > 0 {
			return negotiateContent(responses, accept), true
		}
	}

	return domain.Response{}, false
}

// negotiateContent implements spec §4.4.1: with an empty Accept header
// the first response wins; otherwise the first response whose MediaType
// equals Accept exactly wins, falling back to the first response when
// none match. Comparison is case-sensitive full-string.
func negotiateContent(responses []domain.Response, accept string) domain.Response {
	if accept == "" {
		return responses[0]
	}
	for _, resp := range responses {
		if resp.MediaType == accept {
			return resp
		}
	}
	return responses[0]
}
