package parsing

import (
	"strings"

	"github.com/jonathan/hr-assistant/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":      "Go",
	"go lang":     "Go",
	"javascript":  "JavaScript",
	"js":          "JavaScript",
	"typescript":  "TypeScript",
	"ts":          "TypeScript",
	"k8s":         "Kubernetes",
	"kubernetes":  "Kubernetes",
	"react.js":    "React",
	"reactjs":     "React",
	"vue.js":      "Vue",
	"vuejs":       "Vue",
	"node.js":     "Node.js",
	"nodejs":      "Node.js",
	"springboot":  "Spring Boot",
	"spring boot": "Spring Boot",
	"postgres":    "PostgreSQL",
	"postgresql":  "PostgreSQL",
	"mysql":       "MySQL",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Short all-caps words are acronyms (AWS, SQL, CI)
	if normalized == strings.ToUpper(normalized) && len(normalized) <= 4 {
		return normalized
	}

	if strings.Contains(normalized, " ") {
		return normalized
	}

	switch normalized {
	case strings.ToUpper(normalized):
		return strings.ToUpper(normalized[:1]) + strings.ToLower(normalized[1:])
	case lower:
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	default:
		return normalized
	}
}

// NormalizeSkills normalizes skill names and drops empty and duplicate entries.
func NormalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return skills
	}
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := NormalizeSkillName(s)
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		out = append(out, n)
	}
	return out
}

// NormalizeRequirements trims requirement names and merges requirements that
// share a name (case-insensitive). Merged weights are summed so the total is unchanged.
func NormalizeRequirements(reqs []types.Requirement) []types.Requirement {
	if len(reqs) == 0 {
		return reqs
	}

	normalized := make([]types.Requirement, 0, len(reqs))
	seen := make(map[string]int)

	for _, req := range reqs {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		desc := strings.TrimSpace(req.Description)

		if idx, exists := seen[key]; exists {
			normalized[idx].Weight += req.Weight
			if desc != "" && !strings.Contains(normalized[idx].Description, desc) {
				if normalized[idx].Description != "" {
					normalized[idx].Description += "; "
				}
				normalized[idx].Description += desc
			}
			continue
		}

		normalized = append(normalized, types.Requirement{Name: name, Description: desc, Weight: req.Weight})
		seen[key] = len(normalized) - 1
	}

	return normalized
}
