package prompts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		bindings map[string]string
		expected string
	}{
		{
			name:     "single token",
			template: "JD: {{jd}}",
			bindings: map[string]string{"jd": "X"},
			expected: "JD: X",
		},
		{
			name:     "repeated token",
			template: "{{a}} and {{a}}",
			bindings: map[string]string{"a": "1"},
			expected: "1 and 1",
		},
		{
			name:     "unbound token is kept",
			template: "A={{a}} B={{b}}",
			bindings: map[string]string{"a": "1"},
			expected: "A=1 B={{b}}",
		},
		{
			name:     "nil bindings",
			template: "Hello {{name}}",
			bindings: nil,
			expected: "Hello {{name}}",
		},
		{
			name:     "value containing a token is not re-scanned",
			template: "{{a}} {{b}}",
			bindings: map[string]string{"a": "{{b}}", "b": "2"},
			expected: "{{b}} 2",
		},
		{
			name:     "whitespace inside braces is not a token",
			template: "{{ a }} {{a}}",
			bindings: map[string]string{"a": "1"},
			expected: "{{ a }} 1",
		},
		{
			name:     "json braces are untouched",
			template: "{\n  \"jobTitle\": \"{{title}}\"\n}",
			bindings: map[string]string{"title": "Engineer"},
			expected: "{\n  \"jobTitle\": \"Engineer\"\n}",
		},
		{
			name:     "empty value",
			template: "[{{extra}}]",
			bindings: map[string]string{"extra": ""},
			expected: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, tt.bindings))
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	bindings := map[string]string{"jd": "3+ years Java", "weights": "prioritize experience"}
	for _, key := range Default().Keys() {
		t.Run(key, func(t *testing.T) {
			tmpl := Default().MustGet(key)
			once := Render(tmpl, bindings)
			assert.Equal(t, once, Render(once, bindings))
		})
	}
}

func TestRenderJSONSafe(t *testing.T) {
	tmpl := `{"resume": "{{resume}}"}`
	out := RenderJSONSafe(tmpl, map[string]string{"resume": "line \"one\"\nline <two> \\ end"})

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "line \"one\"\nline <two> \\ end", decoded["resume"])
}

func TestEscapeJSON(t *testing.T) {
	assert.Equal(t, `a\"b`, EscapeJSON(`a"b`))
	assert.Equal(t, `tab\there`, EscapeJSON("tab\there"))
	assert.Equal(t, `<b>&`, EscapeJSON(`<b>&`))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Placeholders("{{a}} {{b}} {{a}}"))
	assert.Empty(t, Placeholders("no tokens here"))
}
