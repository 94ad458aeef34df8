package workflow

import (
	"fmt"

	"github.com/jonathan/hr-assistant/internal/prompts"
)

// Stage names one step of an HR workflow.
type Stage string

// Stage constants
const (
	StageGenerateJD    Stage = "generate_jd"
	StageFocusPoints   Stage = "focus_points"
	StageRequirements  Stage = "structure_requirements"
	StageGradeResume   Stage = "grade_resume"
	StagePolishJD      Stage = "polish_jd"
	StageExtractFields Stage = "extract_fields"
)

// StageDefinition defines metadata for a workflow stage
type StageDefinition struct {
	Name         Stage   `json:"name"`
	Prompt       string  `json:"prompt"`
	Description  string  `json:"description"`
	Dependencies []Stage `json:"dependencies"`
	Produces     string  `json:"produces"`
}

// Pipeline lists the stages of the full hiring workflow in execution order.
var Pipeline = []StageDefinition{
	{
		Name:        StageGenerateJD,
		Prompt:      prompts.KeyJDGenerate,
		Description: "Draft a job description from the HR job fields",
		Produces:    "jd",
	},
	{
		Name:         StageFocusPoints,
		Prompt:       prompts.KeyJDFocusPoints,
		Description:  "Distill the one or two points the role values most",
		Dependencies: []Stage{StageGenerateJD},
		Produces:     "focusPoints",
	},
	{
		Name:         StageRequirements,
		Prompt:       prompts.KeyJDToJSON,
		Description:  "Structure the JD and focus points into weighted requirements",
		Dependencies: []Stage{StageGenerateJD, StageFocusPoints},
		Produces:     "requirements",
	},
	{
		Name:         StageGradeResume,
		Prompt:       prompts.KeyGradeResume,
		Description:  "Score a resume against the weighted requirements",
		Dependencies: []Stage{StageRequirements},
		Produces:     "evaluation",
	},
}

// Definition returns the definition of a pipeline stage and its position.
func Definition(name Stage) (StageDefinition, int, bool) {
	for i, def := range Pipeline {
		if def.Name == name {
			return def, i, true
		}
	}
	return StageDefinition{}, -1, false
}

// ValidateOrder checks that every stage's dependencies run before it and
// that every stage prompt exists in the registry.
func ValidateOrder(defs []StageDefinition, registry *prompts.Registry) error {
	done := make(map[Stage]bool, len(defs))
	for _, def := range defs {
		for _, dep := range def.Dependencies {
			if !done[dep] {
				return fmt.Errorf("stage %s depends on %s which has not run", def.Name, dep)
			}
		}
		if registry != nil {
			if _, err := registry.Get(def.Prompt); err != nil {
				return fmt.Errorf("stage %s: %w", def.Name, err)
			}
		}
		done[def.Name] = true
	}
	return nil
}
