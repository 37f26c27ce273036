package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURIPatternFromOperationName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "GET prefix", in: "GET /pets/{id}", want: "/pets/{id}"},
		{name: "POST prefix", in: "POST /pets", want: "/pets"},
		{name: "no known verb prefix", in: "/pets/{id}", want: "/pets/{id}"},
		{name: "unrecognized verb left untouched", in: "HEAD /pets", want: "HEAD /pets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URIPatternFromOperationName(tt.in))
		})
	}
}

func TestPatternToRegexMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{name: "brace placeholder matches", pattern: "/pets/{id}", path: "/pets/123", want: true},
		{name: "brace placeholder rejects extra segment", pattern: "/pets/{id}", path: "/pets/123/extra", want: false},
		{name: "colon placeholder matches", pattern: "/pets/:id", path: "/pets/abc", want: true},
		{name: "literal path matches itself", pattern: "/pets", path: "/pets", want: true},
		{name: "literal path rejects different path", pattern: "/pets", path: "/owners", want: false},
		{name: "hyphenated placeholder name", pattern: "/pets/{pet-id}", path: "/pets/42", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := PatternToRegex(tt.pattern)
			assert.Equal(t, tt.want, re.MatchString(tt.path))
		})
	}
}

func TestExtractFromURIPattern(t *testing.T) {
	tests := []struct {
		name    string
		rules   string
		pattern string
		path    string
		want    string
	}{
		{
			name:    "single placeholder in rules",
			rules:   "id",
			pattern: "/pets/{id}",
			path:    "/pets/123",
			want:    "?id=123",
		},
		{
			name:    "placeholder not listed in rules is dropped",
			rules:   "",
			pattern: "/pets/{id}",
			path:    "/pets/123",
			want:    "",
		},
		{
			name:    "multiple placeholders sorted ascending",
			rules:   "id,owner",
			pattern: "/owners/{owner}/pets/{id}",
			path:    "/owners/42/pets/7",
			want:    "?id=7?owner=42",
		},
		{
			name:    "hyphenated placeholder name",
			rules:   "pet-id",
			pattern: "/pets/{pet-id}",
			path:    "/pets/99",
			want:    "?pet-id=99",
		},
		{
			name:    "shape mismatch yields empty criteria",
			rules:   "id",
			pattern: "/pets/{id}",
			path:    "/pets/123/extra",
			want:    "",
		},
		{
			name:    "pattern without placeholders yields empty criteria",
			rules:   "id",
			pattern: "/pets",
			path:    "/pets",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFromURIPattern(tt.rules, tt.pattern, tt.path)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFromURIParams(t *testing.T) {
	tests := []struct {
		name    string
		rules   string
		fullURI string
		want    string
	}{
		{
			name:    "single param",
			rules:   "status",
			fullURI: "/pets?status=available",
			want:    "?status=available",
		},
		{
			name:    "multiple params sorted ascending",
			rules:   "color,status",
			fullURI: "/pets?status=available&color=red",
			want:    "?color=red?status=available",
		},
		{
			name:    "param not in rules is ignored",
			rules:   "status",
			fullURI: "/pets?status=available&color=red",
			want:    "?status=available",
		},
		{
			name:    "no rules yields empty criteria",
			rules:   "",
			fullURI: "/pets?status=available",
			want:    "",
		},
		{
			name:    "value stays URL-encoded",
			rules:   "q",
			fullURI: "/pets?q=a%20b",
			want:    "?q=a%20b",
		},
		{
			name:    "rule param absent from query still contributes an empty value",
			rules:   "status",
			fullURI: "/pets?color=red",
			want:    "?status=",
		},
		{
			name:    "mix of present and absent rule params sorted ascending",
			rules:   "color,status",
			fullURI: "/pets?color=red",
			want:    "?color=red?status=",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFromURIParams(tt.rules, tt.fullURI)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPathRoundTrip(t *testing.T) {
	pattern := "/owners/{owner}/pets/{id}"
	values := map[string]string{"owner": "42", "id": "7"}
	path := BuildPath(pattern, values)
	assert.Equal(t, "/owners/42/pets/7", path)

	criteria := ExtractFromURIPattern("id,owner", pattern, path)
	assert.Equal(t, "?id=7?owner=42", criteria)
}
