package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractJSONCandidates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "bracketed list in prose before the object",
			input:    "The weights [0.4, 0.6] sum to 1.0.\n{\"requirements\": [{\"name\": \"a\"}]}",
			expected: []string{`[0.4, 0.6]`, `{"requirements": [{"name": "a"}]}`},
		},
		{
			name:     "nested values are not reported",
			input:    `{"outer": {"inner": [1, 2]}} then [3]`,
			expected: []string{`{"outer": {"inner": [1, 2]}}`, `[3]`},
		},
		{
			name:     "fenced block first, no duplicates",
			input:    "Scores [85, 70] below.\n```json\n{\"totalScore\": 1}\n```",
			expected: []string{`{"totalScore": 1}`, `[85, 70]`},
		},
		{
			name:     "invalid bracket text skipped",
			input:    "See [the rubric] and {not json} then {\"a\": 1}",
			expected: []string{`{"a": 1}`},
		},
		{
			name:     "prose only",
			input:    "No JSON here.",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONCandidates(tt.input))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"jobTitle\": \"Engineer\"}",
			expected: `{"jobTitle": "Engineer"}`,
			ok:       true,
		},
		{
			name:     "prose around fenced block",
			input:    "Sure! Here is the evaluation:\n```json\n{\"totalScore\": 80}\n```\nLet me know if you need more.",
			expected: `{"totalScore": 80}`,
			ok:       true,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the items:\n[\"item1\", \"item2\"]",
			expected: `["item1", "item2"]`,
			ok:       true,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
			ok:       true,
		},
		{
			name:     "bracketed prose before object",
			input:    "Result [see below]: {\"values\": [\"innovation\"]}",
			expected: `{"values": ["innovation"]}`,
			ok:       true,
		},
		{
			name:     "escaped quotes",
			input:    "Result: {\"message\": \"He said \\\"hello\\\" }\"}",
			expected: `{"message": "He said \"hello\" }"}`,
			ok:       true,
		},
		{
			name:     "deeply nested",
			input:    "Here: {\"a\": {\"b\": {\"c\": {\"d\": \"deep\"}}}}",
			expected: `{"a": {"b": {"c": {"d": "deep"}}}}`,
			ok:       true,
		},
		{
			name:  "truncated JSON",
			input: "{\"key\": \"val",
			ok:    false,
		},
		{
			name:  "empty",
			input: "",
			ok:    false,
		},
		{
			name:  "prose only",
			input: "I cannot help with that.",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple object", `{"key": "value"}`, `{"key": "value"}`},
		{"nested objects", `{"outer": {"inner": "value"}}`, `{"outer": {"inner": "value"}}`},
		{"object with array", `{"items": [1, 2, 3]}`, `{"items": [1, 2, 3]}`},
		{"object with trailing text", `{"key": "value"} and some more text`, `{"key": "value"}`},
		{"string with braces inside", `{"template": "Hello {name}!"}`, `{"template": "Hello {name}!"}`},
		{"empty input", "", ""},
		{"not starting with brace", "not json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple array", `["a", "b", "c"]`, `["a", "b", "c"]`},
		{"nested arrays", `[[1, 2], [3, 4]]`, `[[1, 2], [3, 4]]`},
		{"array of objects", `[{"id": 1}, {"id": 2}]`, `[{"id": 1}, {"id": 2}]`},
		{"array with trailing text", `[1, 2, 3] extra stuff`, `[1, 2, 3]`},
		{"empty input", "", ""},
		{"not starting with bracket", "not array", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONArray(tt.input))
		})
	}
}
