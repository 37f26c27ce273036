package engine

import (
	"strconv"
	"strings"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// decideProxyURL implements the Proxy Decider of spec §4.5: it returns a
// non-empty target URL when the operation's dispatcher is PROXY
// (unconditional forward, target built from the operation's own
// dispatcherRules), or when a ProxyFallback is configured and either no
// response was selected or the selected response matches the fallback's
// status condition.
func decideProxyURL(dispatcher domain.Dispatcher, dispatcherRules, resourcePath string, proxyFallback *domain.ProxyFallbackSpecification, selected domain.Response, hasSelected bool) (string, bool) {
	if dispatcher == domain.DispatcherProxy {
		return buildProxyURL(dispatcherRules, resourcePath), true
	}

	if proxyFallback == nil {
		return "", false
	}

	if !hasSelected {
		return buildProxyURL(proxyFallback.ProxyURL, resourcePath), true
	}

	if proxyFallback.Condition != nil && matchesProxyCondition(*proxyFallback.Condition, selected) {
		return buildProxyURL(proxyFallback.ProxyURL, resourcePath), true
	}

	return "", false
}

// matchesProxyCondition checks whether a selected response satisfies a
// ProxyCondition; a StatusEquals of zero is treated as "no status
// constraint" and never matches on its own.
func matchesProxyCondition(cond domain.ProxyCondition, selected domain.Response) bool {
	if cond.StatusEquals == 0 {
		return false
	}
	return selected.Status == strconv.Itoa(cond.StatusEquals)
}

// buildProxyURL joins base and resourcePath, avoiding a doubled slash.
func buildProxyURL(base, resourcePath string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(resourcePath, "/") {
		resourcePath = "/" + resourcePath
	}
	return base + resourcePath
}
