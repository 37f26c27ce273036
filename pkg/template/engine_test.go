package template

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// =============================================================================
// Parenthesized Syntax Tests
// =============================================================================

func TestRandomIntParenthesized(t *testing.T) {
	engine := New()

	tests := []struct {
		name     string
		template string
		min      int
		max      int
	}{
		{"basic range", "{{random.int(1, 100)}}", 1, 100},
		{"tight range", "{{random.int(5, 5)}}", 5, 5},
		{"zero range", "{{random.int(0, 0)}}", 0, 0},
		{"large range", "{{random.int(0, 1000000)}}", 0, 1000000},
		{"with spaces", "{{ random.int(1, 50) }}", 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Process(tt.template, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}

			n, err := strconv.Atoi(result)
			if err != nil {
				t.Fatalf("result should be integer, got %q: %v", result, err)
			}
			if n < tt.min || n > tt.max {
				t.Errorf("result %d not in range [%d, %d]", n, tt.min, tt.max)
			}
		})
	}
}

func TestRandomFloatParenthesized(t *testing.T) {
	engine := New()

	t.Run("basic range", func(t *testing.T) {
		result, err := engine.Process("{{random.float(1.0, 10.0)}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		f, err := strconv.ParseFloat(result, 64)
		if err != nil {
			t.Fatalf("result should be float, got %q: %v", result, err)
		}
		if f < 1.0 || f > 10.0 {
			t.Errorf("result %f not in range [1.0, 10.0]", f)
		}
	})

	t.Run("with precision", func(t *testing.T) {
		result, err := engine.Process("{{random.float(0.0, 100.0, 2)}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		f, err := strconv.ParseFloat(result, 64)
		if err != nil {
			t.Fatalf("result should be float, got %q: %v", result, err)
		}
		if f < 0.0 || f > 100.0 {
			t.Errorf("result %f not in range [0.0, 100.0]", f)
		}
		parts := strings.Split(result, ".")
		if len(parts) == 2 && len(parts[1]) > 2 {
			t.Errorf("expected at most 2 decimal places, got %q", result)
		}
	})

	t.Run("no args returns 0-1", func(t *testing.T) {
		result, err := engine.Process("{{random.float}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		f, err := strconv.ParseFloat(result, 64)
		if err != nil {
			t.Fatalf("result should be float, got %q: %v", result, err)
		}
		if f < 0.0 || f >= 1.0 {
			t.Errorf("result %f not in range [0.0, 1.0)", f)
		}
	})
}

func TestParenthesizedUpperLower(t *testing.T) {
	engine := New()

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"upper parenthesized", `{{upper("hello")}}`, "HELLO"},
		{"lower parenthesized", `{{lower("WORLD")}}`, "world"},
		{"upper unquoted", `{{upper(hello)}}`, "HELLO"},
		{"lower unquoted", `{{lower(WORLD)}}`, "world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Process(tt.template, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("Process() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestParenthesizedDefault(t *testing.T) {
	engine := New()

	t.Run("default with empty value", func(t *testing.T) {
		result, err := engine.Process(`{{default(request.query.missing, "fallback")}}`, nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "fallback" {
			t.Errorf("Process() = %q, want %q", result, "fallback")
		}
	})
}

// =============================================================================
// Random String Tests
// =============================================================================

func TestRandomStringParenthesized(t *testing.T) {
	engine := New()

	t.Run("default length 10", func(t *testing.T) {
		result, err := engine.Process("{{random.string}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(result) != 10 {
			t.Errorf("random.string should return 10 chars, got %d: %q", len(result), result)
		}
		matched, _ := regexp.MatchString(`^[a-zA-Z0-9]+$`, result)
		if !matched {
			t.Errorf("random.string should be alphanumeric, got %q", result)
		}
	})

	t.Run("custom length", func(t *testing.T) {
		result, err := engine.Process("{{random.string(20)}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(result) != 20 {
			t.Errorf("random.string(20) should return 20 chars, got %d: %q", len(result), result)
		}
	})

	t.Run("length 1", func(t *testing.T) {
		result, err := engine.Process("{{random.string(1)}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(result) != 1 {
			t.Errorf("random.string(1) should return 1 char, got %d: %q", len(result), result)
		}
	})

	t.Run("produces different values", func(t *testing.T) {
		results := make(map[string]bool)
		for i := 0; i < 20; i++ {
			result, _ := engine.Process("{{random.string(10)}}", nil)
			results[result] = true
		}
		if len(results) < 2 {
			t.Error("random.string should produce different values across calls")
		}
	})
}

// =============================================================================
// Request Context Tests
// =============================================================================

func petRequest() domain.EvaluableRequest {
	return domain.EvaluableRequest{
		Method:        "POST",
		Path:          "/pets/1",
		Body:          `{"name": "Rex", "owner": {"id": "42"}}`,
		Headers:       map[string][]string{"X-Custom": {"header-value"}},
		QueryParams:   map[string][]string{"status": {"available"}},
		PathVariables: map[string]string{"id": "1"},
	}
}

func TestEvaluateRequestFields(t *testing.T) {
	engine := New()
	ctx := NewContext(petRequest(), nil)

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"method", "{{request.method}}", "POST"},
		{"path", "{{request.path}}", "/pets/1"},
		{"body field", "{{request.body.name}}", "Rex"},
		{"nested body field", "{{request.body.owner.id}}", "42"},
		{"query param", "{{request.query.status}}", "available"},
		{"header", "{{request.header.X-Custom}}", "header-value"},
		{"path variable", "{{request.pathVariable.id}}", "1"},
		{"missing path variable", "{{request.pathVariable.missing}}", ""},
		{"missing query", "{{request.query.missing}}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Process(tt.template, ctx)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("Process(%q) = %q, want %q", tt.template, result, tt.expected)
			}
		})
	}

	t.Run("nil context returns empty", func(t *testing.T) {
		result, err := engine.Process("{{request.method}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "" {
			t.Errorf("expected empty, got %q", result)
		}
	})
}

func TestEvaluateRequestContext(t *testing.T) {
	engine := New()
	req := petRequest()

	t.Run("published value visible", func(t *testing.T) {
		ctx := NewContext(req, map[string]any{"seen": "yes", "count": 3})
		result, err := engine.Process("{{requestContext.seen}} {{requestContext.count}}", ctx)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "yes 3" {
			t.Errorf("Process() = %q, want %q", result, "yes 3")
		}
	})

	t.Run("missing key returns empty", func(t *testing.T) {
		ctx := NewContext(req, map[string]any{"seen": "yes"})
		result, err := engine.Process("{{requestContext.missing}}", ctx)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "" {
			t.Errorf("expected empty, got %q", result)
		}
	})

	t.Run("nil requestContext returns empty", func(t *testing.T) {
		ctx := NewContext(req, nil)
		result, err := engine.Process("{{requestContext.anything}}", ctx)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "" {
			t.Errorf("expected empty, got %q", result)
		}
	})
}

func TestDefaultWithRequestFallback(t *testing.T) {
	engine := New()

	t.Run("default with missing header uses fallback", func(t *testing.T) {
		result, err := engine.Process(`{{default(request.header.X-Custom, "fallback-value")}}`, nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "fallback-value" {
			t.Errorf("Process() = %q, want %q", result, "fallback-value")
		}
	})

	t.Run("default with present header uses value", func(t *testing.T) {
		ctx := NewContext(petRequest(), nil)
		result, err := engine.Process(`{{default(request.header.X-Custom, "fallback")}}`, ctx)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "header-value" {
			t.Errorf("Process() = %q, want %q", result, "header-value")
		}
	})
}

// =============================================================================
// Sequence with Default Engine Tests
// =============================================================================

func TestSequenceWithDefaultEngine(t *testing.T) {
	t.Run("sequence auto-increments", func(t *testing.T) {
		engine := New()
		result1, _ := engine.Process(`{{sequence("http_counter")}}`, nil)
		result2, _ := engine.Process(`{{sequence("http_counter")}}`, nil)
		result3, _ := engine.Process(`{{sequence("http_counter")}}`, nil)
		if result1 != "1" || result2 != "2" || result3 != "3" {
			t.Errorf("sequence should auto-increment: got %q, %q, %q", result1, result2, result3)
		}
	})

	t.Run("sequence with custom start", func(t *testing.T) {
		engine := New()
		result1, _ := engine.Process(`{{sequence("counter", 100)}}`, nil)
		result2, _ := engine.Process(`{{sequence("counter", 100)}}`, nil)
		if result1 != "100" || result2 != "101" {
			t.Errorf("sequence with start=100 should give 100, 101: got %q, %q", result1, result2)
		}
	})
}

// =============================================================================
// Sequence Tests
// =============================================================================

func TestSequenceBasic(t *testing.T) {
	store := NewSequenceStore()
	engine := NewWithSequences(store)

	t.Run("auto-increment from 1", func(t *testing.T) {
		for i := int64(1); i <= 5; i++ {
			result, err := engine.Process(`{{sequence("counter")}}`, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			expected := strconv.FormatInt(i, 10)
			if result != expected {
				t.Errorf("iteration %d: got %q, want %q", i, result, expected)
			}
		}
	})

	t.Run("independent sequences", func(t *testing.T) {
		store2 := NewSequenceStore()
		eng2 := NewWithSequences(store2)

		eng2.Process(`{{sequence("a")}}`, nil)
		eng2.Process(`{{sequence("a")}}`, nil)
		eng2.Process(`{{sequence("b")}}`, nil)

		resultA, _ := eng2.Process(`{{sequence("a")}}`, nil)
		resultB, _ := eng2.Process(`{{sequence("b")}}`, nil)

		if resultA != "3" {
			t.Errorf("sequence 'a' should be 3, got %q", resultA)
		}
		if resultB != "2" {
			t.Errorf("sequence 'b' should be 2, got %q", resultB)
		}
	})
}

// =============================================================================
// SequenceStore Tests
// =============================================================================

func TestSequenceStoreNext(t *testing.T) {
	store := NewSequenceStore()

	if v := store.Next("test", 1); v != 1 {
		t.Errorf("first Next = %d, want 1", v)
	}
	if v := store.Next("test", 1); v != 2 {
		t.Errorf("second Next = %d, want 2", v)
	}
}

func TestSequenceStoreReset(t *testing.T) {
	store := NewSequenceStore()

	store.Next("reset-test", 10)
	store.Next("reset-test", 10)
	store.Reset("reset-test")

	if v := store.Next("reset-test", 10); v != 10 {
		t.Errorf("after reset Next = %d, want 10", v)
	}
}

func TestSequenceStoreConcurrency(t *testing.T) {
	store := NewSequenceStore()
	var wg sync.WaitGroup
	goroutines := 100
	iterations := 100

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				store.Next("concurrent", 1)
			}
		}()
	}
	wg.Wait()

	expected := int64(goroutines*iterations) + 1
	if v := store.Current("concurrent"); v != expected {
		t.Errorf("concurrent Current = %d, want %d", v, expected)
	}
}

// =============================================================================
// Faker Tests
// =============================================================================

func TestFakerVariables(t *testing.T) {
	engine := New()

	fakerTypes := []struct {
		name    string
		pattern string
	}{
		{"uuid", `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`},
		{"boolean", `^(true|false)$`},
		{"email", `.+@.+\..+`},
		{"phone", `^\+1-\d{3}-\d{3}-\d{4}$`},
		{"word", `^\w+$`},
		{"sentence", `.+\.$`},
		{"request_id", `^[0-9a-f]{16}$`},
	}

	for _, ft := range fakerTypes {
		t.Run("faker."+ft.name, func(t *testing.T) {
			result, err := engine.Process("{{faker."+ft.name+"}}", nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if matched, _ := regexp.MatchString(ft.pattern, result); !matched {
				t.Errorf("faker.%s = %q doesn't match pattern %q", ft.name, result, ft.pattern)
			}
		})
	}

	t.Run("faker.unknown returns empty", func(t *testing.T) {
		result, err := engine.Process("{{faker.nonexistent}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result != "" {
			t.Errorf("unknown faker type should return empty, got %q", result)
		}
	})
}

// =============================================================================
// Timestamp Variant Tests
// =============================================================================

func TestTimestampVariants(t *testing.T) {
	engine := New()

	t.Run("timestamp.iso", func(t *testing.T) {
		result, err := engine.Process("{{timestamp.iso}}", nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if !strings.Contains(result, "T") || !strings.Contains(result, "Z") {
			t.Errorf("timestamp.iso should be ISO format, got %q", result)
		}
	})

	t.Run("timestamp equals timestamp.unix", func(t *testing.T) {
		r1, _ := engine.Process("{{timestamp}}", nil)
		r2, _ := engine.Process("{{timestamp.unix}}", nil)

		n1, err1 := strconv.ParseInt(r1, 10, 64)
		n2, err2 := strconv.ParseInt(r2, 10, 64)
		if err1 != nil || err2 != nil {
			t.Fatalf("both should be integers: %q, %q", r1, r2)
		}
		diff := n1 - n2
		if diff < -1 || diff > 1 {
			t.Errorf("timestamp and timestamp.unix differ by %d", diff)
		}
	})
}

// =============================================================================
// ProcessInterface Tests
// =============================================================================

func TestProcessInterface(t *testing.T) {
	engine := New()
	ctx := NewContext(petRequest(), nil)

	t.Run("string values are processed", func(t *testing.T) {
		data := "Method is {{request.method}}"
		result := engine.ProcessInterface(data, ctx)
		if result != "Method is POST" {
			t.Errorf("ProcessInterface() = %q, want %q", result, "Method is POST")
		}
	})

	t.Run("map values are recursively processed", func(t *testing.T) {
		data := map[string]interface{}{
			"method": "{{request.method}}",
			"num":    42,
		}
		result := engine.ProcessInterface(data, ctx).(map[string]interface{})
		if result["method"] != "POST" {
			t.Errorf("method = %q, want %q", result["method"], "POST")
		}
		if result["num"] != 42 {
			t.Errorf("num = %v, want 42", result["num"])
		}
	})

	t.Run("slice values are recursively processed", func(t *testing.T) {
		data := []interface{}{"{{request.method}}", "literal", 123}
		result := engine.ProcessInterface(data, ctx).([]interface{})
		if result[0] != "POST" {
			t.Errorf("[0] = %q, want %q", result[0], "POST")
		}
		if result[1] != "literal" {
			t.Errorf("[1] = %q, want %q", result[1], "literal")
		}
	})

	t.Run("nil returns nil", func(t *testing.T) {
		result := engine.ProcessInterface(nil, ctx)
		if result != nil {
			t.Errorf("nil should return nil, got %v", result)
		}
	})
}

// =============================================================================
// formatValue Tests
// =============================================================================

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", "hello"},
		{"float64", 3.14, "3.14"},
		{"float64 whole", 42.0, "42"},
		{"int", 42, "42"},
		{"int64", int64(123), "123"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"other", []int{1, 2}, "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatValue(tt.input)
			if result != tt.expected {
				t.Errorf("formatValue(%v) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// =============================================================================
// splitFuncArgs Tests
// =============================================================================

func TestSplitFuncArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "a, b, c", []string{"a", "b", "c"}},
		{"quoted commas", `"hello, world", b`, []string{`"hello, world"`, "b"}},
		{"single arg", "value", []string{"value"}},
		{"mixed", `request.query.x, "fallback"`, []string{"request.query.x", `"fallback"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitFuncArgs(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitFuncArgs(%q) = %v (len %d), want %v (len %d)",
					tt.input, result, len(result), tt.expected, len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitFuncArgs(%q)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

// =============================================================================
// Combined / Integration Tests
// =============================================================================

func TestRequestTemplateIntegration(t *testing.T) {
	store := NewSequenceStore()
	engine := NewWithSequences(store)
	ctx := NewContext(petRequest(), map[string]any{"tier": "gold"})

	tmpl := `{"id": {{sequence("msg_id")}}, "name": "{{request.body.name}}", "tier": "{{requestContext.tier}}"}`

	result, err := engine.Process(tmpl, ctx)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !strings.Contains(result, `"id": 1`) {
		t.Errorf("should contain sequence id 1, got %s", result)
	}
	if !strings.Contains(result, `"name": "Rex"`) {
		t.Errorf("should contain body field, got %s", result)
	}
	if !strings.Contains(result, `"tier": "gold"`) {
		t.Errorf("should contain requestContext field, got %s", result)
	}
}

func TestBuiltinVariables(t *testing.T) {
	engine := New()

	builtins := []struct {
		name     string
		template string
		checkFn  func(string) bool
	}{
		{"now", "{{now}}", func(s string) bool { return strings.Contains(s, "T") }},
		{"uuid", "{{uuid}}", func(s string) bool { return len(s) == 36 && strings.Count(s, "-") == 4 }},
		{"uuid.short", "{{uuid.short}}", func(s string) bool { return len(s) == 8 }},
		{"timestamp", "{{timestamp}}", func(s string) bool { _, err := strconv.ParseInt(s, 10, 64); return err == nil }},
		{"random", "{{random}}", func(s string) bool { return len(s) == 8 }},
	}

	for _, b := range builtins {
		t.Run(b.name, func(t *testing.T) {
			result, err := engine.Process(b.template, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if !b.checkFn(result) {
				t.Errorf("check failed for %q, got %q", b.name, result)
			}
		})
	}
}

func TestUnknownExpression(t *testing.T) {
	engine := New()

	result, err := engine.Process("{{unknown.expression}}", nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result != "" {
		t.Errorf("unknown expression should return empty, got %q", result)
	}
}

func TestMixedTemplate(t *testing.T) {
	engine := New()

	result, err := engine.Process("Hello {{uuid.short}}, today is {{now}}", nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !strings.HasPrefix(result, "Hello ") {
		t.Errorf("result should start with 'Hello ', got %q", result)
	}
	if !strings.Contains(result, ", today is ") {
		t.Errorf("result should contain ', today is ', got %q", result)
	}
}

func TestEmptyTemplate(t *testing.T) {
	engine := New()

	result, err := engine.Process("", nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result != "" {
		t.Errorf("empty template should return empty, got %q", result)
	}
}

func TestTemplateWithNoExpressions(t *testing.T) {
	engine := New()

	result, err := engine.Process("plain text with no expressions", nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result != "plain text with no expressions" {
		t.Errorf("plain text should be unchanged, got %q", result)
	}
}

func TestWhitespaceInExpressions(t *testing.T) {
	engine := New()

	tests := []struct {
		name     string
		template string
	}{
		{"leading space", "{{ uuid.short }}"},
		{"extra spaces", "{{  uuid.short  }}"},
		{"tab", "{{\tuuid.short\t}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Process(tt.template, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if len(result) != 8 {
				t.Errorf("should still resolve uuid.short, got %q (len=%d)", result, len(result))
			}
		})
	}
}

func TestParseStringArg(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`hello`, "hello"},
		{`"  spaced  "`, "  spaced  "},
		{`""`, ""},
		{`a`, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseStringArg(tt.input)
			if result != tt.expected {
				t.Errorf("parseStringArg(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
