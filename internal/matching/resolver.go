package matching

import "github.com/svcmock/restdispatch/pkg/domain"

// ResolveOperation finds the operation of service that should handle a
// request for (method, resourcePath).
//
// Resolution runs in two passes:
//
//  1. Exact match: the first operation whose Method equals method and
//     whose ResourcePaths contains resourcePath, or resourcePath with a
//     single trailing '/' trimmed off.
//  2. Pattern fallback: for each operation with a matching Method, compute
//     its pattern regex (see PatternToRegex) and return the first whose
//     regex matches the untrimmed resourcePath.
//
// Both passes iterate service.Operations in definition order and return
// the first match; when multiple operations' patterns overlap (e.g.
// "/pets/{id}" and "/pets/count"), the earlier one in definition order
// wins. Returns nil if no operation matches.
func ResolveOperation(service domain.Service, method, resourcePath string) *domain.Operation {
	trimmed := resourcePath
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '/' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	for i := range service.Operations {
		op := &service.Operations[i]
		if op.Method != method {
			continue
		}
		if containsPath(op.ResourcePaths, resourcePath) || containsPath(op.ResourcePaths, trimmed) {
			return op
		}
	}

	for i := range service.Operations {
		op := &service.Operations[i]
		if op.Method != method {
			continue
		}
		pattern := URIPatternFromOperationName(op.Name)
		if PatternToRegex(pattern).MatchString(resourcePath) {
			return op
		}
	}

	return nil
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
