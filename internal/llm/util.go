package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON locates the first well-formed JSON object or array in text.
// Content inside a ``` fence is preferred; otherwise the whole text is scanned,
// so leading or trailing prose is ignored.
func ExtractJSON(text string) (string, bool) {
	blocks := ExtractJSONCandidates(text)
	if len(blocks) == 0 {
		return "", false
	}
	return blocks[0], true
}

// ExtractJSONCandidates returns every top-level well-formed JSON object or
// array in text, in order. Blocks inside a ``` fence come first. Callers that
// expect a given shape try each candidate in turn, so a bracketed list in the
// surrounding prose does not hide the payload.
func ExtractJSONCandidates(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var blocks []string
	seen := make(map[string]bool)
	add := func(found []string) {
		for _, b := range found {
			if !seen[b] {
				seen[b] = true
				blocks = append(blocks, b)
			}
		}
	}

	if inner, ok := fencedBlock(text); ok {
		add(scanJSON(inner))
	}
	add(scanJSON(text))
	return blocks
}

// fencedBlock returns the body of the first ``` fence in text, without the
// language identifier line.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	body := text[start+3:]

	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := body[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
			body = body[idx+1:]
		}
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// scanJSON tries every '{' or '[' in order and returns the balanced blocks
// that are valid JSON. Scanning resumes after each block found, so nested
// values are not reported separately.
func scanJSON(text string) []string {
	var blocks []string
	for i := 0; i < len(text); i++ {
		var block string
		switch text[i] {
		case '{':
			block = extractJSONObject(text[i:])
		case '[':
			block = extractJSONArray(text[i:])
		default:
			continue
		}
		if block != "" && json.Valid([]byte(block)) {
			blocks = append(blocks, block)
			i += len(block) - 1
		}
	}
	return blocks
}

// extractJSONObject returns the balanced {...} prefix of s, or "" if s does not start with one.
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced [...] prefix of s, or "" if s does not start with one.
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, close byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
