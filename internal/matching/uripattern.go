package matching

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var httpVerbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}

// URIPatternFromOperationName strips the leading "<VERB> " prefix from an
// operation name, returning the bare URI pattern. Operation names that do
// not start with a known verb are returned unchanged.
func URIPatternFromOperationName(name string) string {
	for _, verb := range httpVerbs {
		prefix := verb + " "
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

var bracePlaceholder = regexp.MustCompile(`\{[A-Za-z0-9_-]+\}`)

// PatternToRegex compiles an operation URI pattern into a fully anchored
// regular expression, replacing "{word}" and "/:word" placeholders with
// "([^/]+)" capture groups. It is used only as a fallback to literal
// resource-path matching (see ResolveOperation), so it does not escape
// other regex metacharacters that might appear in a pattern's literal
// segments.
func PatternToRegex(pattern string) *regexp.Regexp {
	replaced := bracePlaceholder.ReplaceAllString(pattern, "([^/]+)")
	replaced = replaceColonSegments(replaced)
	re, err := regexp.Compile("^" + replaced + "$")
	if err != nil {
		// A malformed pattern can never match anything.
		return regexp.MustCompile(`^\x00unmatchable\x00$`)
	}
	return re
}

// replaceColonSegments replaces every "/:word" path segment with
// "/([^/]+)".
func replaceColonSegments(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if i > 0 && strings.HasPrefix(seg, ":") && len(seg) > 1 {
			segments[i] = "([^/]+)"
		}
	}
	return strings.Join(segments, "/")
}

// placeholderNames returns, in left-to-right order, the variable names
// bound by pattern's "{name}" and ":name" placeholders.
func placeholderNames(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2:
			names = append(names, seg[1:len(seg)-1])
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			names = append(names, seg[1:])
		}
	}
	return names
}

// extractionRegex builds an anchored regex from pattern where every
// placeholder becomes an unnamed "([^/]+)" capture group, in the same
// left-to-right order as placeholderNames.
func extractionRegex(pattern string) (*regexp.Regexp, error) {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2:
			segments[i] = "([^/]+)"
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			segments[i] = "([^/]+)"
		default:
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return regexp.Compile("^" + strings.Join(segments, "/") + "$")
}

// parseRuleNames splits a dispatcher rules whitelist on whitespace and/or
// commas, dropping empty entries.
func parseRuleNames(rules string) map[string]bool {
	fields := strings.FieldsFunc(rules, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// ExtractFromURIPattern matches concretePath against pattern's placeholder
// structure and builds a dispatch criterion string: the concatenation,
// sorted ascending by placeholder name, of "?<name>=<value>" for every
// placeholder both present in pattern and listed in rules.
//
// Returns "" if pattern and concretePath have incompatible shapes.
func ExtractFromURIPattern(rules, pattern, concretePath string) string {
	names := placeholderNames(pattern)
	if len(names) == 0 {
		return ""
	}
	re, err := extractionRegex(pattern)
	if err != nil {
		return ""
	}
	match := re.FindStringSubmatch(concretePath)
	if match == nil {
		return ""
	}

	allowed := parseRuleNames(rules)
	values := make(map[string]string)
	for i, name := range names {
		if allowed[name] {
			values[name] = match[i+1]
		}
	}
	return buildCriteria(values)
}

// ExtractFromURIParams parses the query string of fullURI and builds a
// dispatch criterion string: the concatenation, sorted ascending by
// parameter name, of "?<name>=<value>" for every parameter name listed in
// rules, whether or not the request actually carries it — a rule name
// absent from the query string contributes "?<name>=" with an empty
// value rather than being dropped. Values present in the query string are
// taken verbatim, still URL-encoded.
func ExtractFromURIParams(rules, fullURI string) string {
	allowed := parseRuleNames(rules)
	if len(allowed) == 0 {
		return ""
	}

	values := make(map[string]string, len(allowed))
	for name := range allowed {
		values[name] = ""
	}

	rawQuery := fullURI
	if idx := strings.Index(fullURI, "?"); idx != -1 {
		rawQuery = fullURI[idx+1:]
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		name := kv[0]
		if !allowed[name] {
			continue
		}
		val := ""
		if len(kv) == 2 {
			val = kv[1]
		}
		values[name] = val
	}
	return buildCriteria(values)
}

// buildCriteria concatenates "?name=value" fragments sorted ascending by
// name, with no separator between fragments — the storage-key format used
// throughout the dispatch pipeline.
func buildCriteria(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString("?")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(values[name])
	}
	return sb.String()
}

// ExtractPathVariables matches concretePath against pattern's placeholder
// structure and returns the bound name/value pairs, unfiltered by any
// dispatcher rules. Returns an empty map if pattern has no placeholders
// or concretePath does not fit its shape.
func ExtractPathVariables(pattern, concretePath string) map[string]string {
	names := placeholderNames(pattern)
	if len(names) == 0 {
		return map[string]string{}
	}
	re, err := extractionRegex(pattern)
	if err != nil {
		return map[string]string{}
	}
	match := re.FindStringSubmatch(concretePath)
	if match == nil {
		return map[string]string{}
	}
	values := make(map[string]string, len(names))
	for i, name := range names {
		values[name] = match[i+1]
	}
	return values
}

// BuildPath renders pattern with values substituted for its placeholders.
// It is the inverse of ExtractFromURIPattern and exists to pin the
// round-trip property: extracting from a path built this way must recover
// the same values (filtered by rules).
func BuildPath(pattern string, values map[string]string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2:
			name := seg[1 : len(seg)-1]
			segments[i] = url.PathEscape(values[name])
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			name := seg[1:]
			segments[i] = url.PathEscape(values[name])
		}
	}
	return strings.Join(segments, "/")
}
