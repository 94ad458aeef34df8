package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvaluation() *ScoreEvaluation {
	return &ScoreEvaluation{
		JobTitle: "Java Engineer",
		Scores: []ScoreEntry{
			{Name: "Education", Description: "Bachelor or above", Score: 80, Weight: 0.2, WeightedScore: 16},
			{Name: "Experience", Description: "3+ years Java", Score: 90, Weight: 0.4, WeightedScore: 36},
			{Name: "Skills", Description: "Spring, React", Score: 70, Weight: 0.3, WeightedScore: 21},
			{Name: "Soft skills", Description: "Teamwork", Score: 60, Weight: 0.1, WeightedScore: 6},
		},
		TotalScore: 79,
	}
}

func TestScoreEvaluation_JSONRoundTrip(t *testing.T) {
	eval := sampleEvaluation()

	jsonBytes, err := json.Marshal(eval)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"weightedScore":16`)
	assert.Contains(t, string(jsonBytes), `"totalScore":79`)

	var unmarshaled ScoreEvaluation
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, *eval, unmarshaled)
	assert.True(t, unmarshaled.Consistent())
}

func TestScoreEvaluation_Consistent(t *testing.T) {
	eval := sampleEvaluation()
	assert.True(t, eval.Consistent())
	assert.InDelta(t, 79.0, eval.SumWeighted(), 1e-9)

	eval.TotalScore = 80
	assert.False(t, eval.Consistent())
}

func TestScoreEvaluation_Recompute(t *testing.T) {
	t.Run("already consistent", func(t *testing.T) {
		eval := sampleEvaluation()
		assert.False(t, eval.Recompute())
		assert.InDelta(t, 79.0, eval.TotalScore, 1e-9)
	})

	t.Run("fixes model arithmetic", func(t *testing.T) {
		eval := sampleEvaluation()
		eval.Scores[1].WeightedScore = 40
		eval.TotalScore = 100

		assert.True(t, eval.Recompute())
		assert.InDelta(t, 36.0, eval.Scores[1].WeightedScore, 1e-9)
		assert.InDelta(t, 79.0, eval.TotalScore, 1e-9)
		assert.True(t, eval.Consistent())
	})

	t.Run("empty scores", func(t *testing.T) {
		eval := &ScoreEvaluation{JobTitle: "x", TotalScore: 5}
		assert.True(t, eval.Recompute())
		assert.Zero(t, eval.TotalScore)
	})
}

func TestJobRequirements_Weights(t *testing.T) {
	reqs := &JobRequirements{
		JobTitle: "Java Engineer",
		Requirements: []Requirement{
			{Name: "Education", Weight: 0.2},
			{Name: "Experience", Weight: 0.4},
			{Name: "Skills", Weight: 0.3},
			{Name: "Soft skills", Weight: 0.1},
		},
	}
	assert.InDelta(t, 1.0, reqs.WeightSum(), 1e-9)
	assert.True(t, reqs.WeightsBalanced())

	reqs.Requirements[0].Weight = 0.5
	assert.False(t, reqs.WeightsBalanced())
}

func TestJobRequirements_Validate(t *testing.T) {
	valid := &JobRequirements{Requirements: []Requirement{{Name: "Experience", Weight: 1}}}
	assert.NoError(t, valid.Validate())

	empty := &JobRequirements{JobTitle: "x"}
	assert.Error(t, empty.Validate())

	unnamed := &JobRequirements{Requirements: []Requirement{{Weight: 0.5}}}
	assert.Error(t, unnamed.Validate())

	overweight := &JobRequirements{Requirements: []Requirement{{Name: "a", Weight: 1.5}}}
	assert.Error(t, overweight.Validate())
}

func TestJobFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fields  JobFields
		wantErr bool
	}{
		{
			name:   "all required present",
			fields: JobFields{JobName: "Java Engineer", JobDescription: "Build services", MainPoint: "3+ years Java"},
		},
		{
			name:    "missing job name",
			fields:  JobFields{JobDescription: "Build services", MainPoint: "3+ years Java"},
			wantErr: true,
		},
		{
			name:    "missing main point",
			fields:  JobFields{JobName: "Java Engineer", JobDescription: "Build services"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
