package prompts

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// tokenPattern matches a {{name}} placeholder. No whitespace is allowed inside the braces.
var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// Render replaces every {{name}} token in template with bindings[name].
// Tokens without a binding are left verbatim. Substituted values are not
// re-scanned, so a value that itself contains {{x}} is inserted literally.
// Values are inserted without any escaping: text supplied by callers reaches
// the model as is, instructions included. Use RenderJSONSafe when the
// placeholders sit inside JSON string literals.
func Render(template string, bindings map[string]string) string {
	return render(template, bindings, func(v string) string { return v })
}

// RenderJSONSafe behaves like Render but escapes each value for inclusion
// inside a JSON string literal.
func RenderJSONSafe(template string, bindings map[string]string) string {
	return render(template, bindings, EscapeJSON)
}

func render(template string, bindings map[string]string, transform func(string) string) string {
	if len(bindings) == 0 {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-2]
		if value, ok := bindings[name]; ok {
			return transform(value)
		}
		return token
	})
}

// EscapeJSON escapes s so it can be placed between double quotes in a JSON document.
func EscapeJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// Placeholders returns the distinct token names in template in order of first appearance.
func Placeholders(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}
