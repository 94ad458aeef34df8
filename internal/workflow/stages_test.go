package workflow

import (
	"testing"

	"github.com/jonathan/hr-assistant/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineOrder(t *testing.T) {
	require.NoError(t, ValidateOrder(Pipeline, prompts.Default()))

	names := make([]Stage, len(Pipeline))
	for i, def := range Pipeline {
		names[i] = def.Name
	}
	assert.Equal(t, []Stage{StageGenerateJD, StageFocusPoints, StageRequirements, StageGradeResume}, names)
}

func TestValidateOrder_MissingDependency(t *testing.T) {
	defs := []StageDefinition{Pipeline[1], Pipeline[0]}
	err := ValidateOrder(defs, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "focus_points depends on generate_jd")
}

func TestValidateOrder_UnknownPrompt(t *testing.T) {
	defs := []StageDefinition{{Name: "custom", Prompt: "does-not-exist"}}
	err := ValidateOrder(defs, prompts.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage custom")
}

func TestDefinition(t *testing.T) {
	def, idx, ok := Definition(StageRequirements)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, prompts.KeyJDToJSON, def.Prompt)

	_, idx, ok = Definition(StagePolishJD)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}
