package parsing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/hr-assistant/internal/schemas"
	"github.com/jonathan/hr-assistant/internal/types"
)

// emptyMarkers are values models use for "not mentioned".
var emptyMarkers = map[string]bool{
	"null": true, "none": true, "n/a": true, "na": true, "unknown": true, "not mentioned": true, "-": true,
}

// ParseJDFields extracts the key fields of a job description from an LLM answer.
// Missing or placeholder values are dropped; list values are joined and
// skills are normalized.
func ParseJDFields(raw string) (*types.JDFields, error) {
	var decoded map[string]any
	err := decodeFirst(raw, "fields", func(block string) error {
		if !strings.HasPrefix(block, "{") {
			return &ParseError{Message: "no JSON object found in fields response", Raw: raw}
		}
		if err := schemas.Validate(schemas.JDFields, block); err != nil {
			return &ParseError{Message: "fields response does not match schema", Raw: raw, Cause: err}
		}
		if err := json.Unmarshal([]byte(block), &decoded); err != nil {
			return &ParseError{Message: "failed to decode fields", Raw: raw, Cause: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := &types.JDFields{
		Title:        textValue(decoded["title"]),
		Department:   textValue(decoded["department"]),
		Location:     textValue(decoded["location"]),
		Description:  textValue(decoded["description"]),
		Requirements: textValue(decoded["requirements"]),
		SalaryRange:  textValue(lookup(decoded, "salaryRange", "salary_range")),
		Skills:       NormalizeSkills(listValue(decoded["skills"])),
		Experience:   textValue(decoded["experience"]),
		Education:    textValue(decoded["education"]),
		CompanySize:  textValue(lookup(decoded, "companySize", "company_size")),
		Industry:     textValue(decoded["industry"]),
	}
	return fields, nil
}

// lookup returns the first key of decoded that is present. Models mix
// camelCase and snake_case keys.
func lookup(decoded map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := decoded[key]; ok {
			return v
		}
	}
	return nil
}

func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(val)
		if emptyMarkers[strings.ToLower(s)] {
			return ""
		}
		return s
	case []any:
		return strings.Join(listValue(val), "\n")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func listValue(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := textValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
			if s := textValue(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
