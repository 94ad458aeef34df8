package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/hr-assistant/internal/types"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

func TestPrintRequirements(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRequirements(&types.JobRequirements{
		JobTitle: "Java Engineer",
		Requirements: []types.Requirement{
			{Name: "Experience", Weight: 0.6},
			{Name: "Skills", Weight: 0.4},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB REQUIREMENTS")
	assert.Contains(t, output, "Java Engineer")
	assert.Contains(t, output, "Experience")
	assert.Contains(t, output, "60%")
	assert.NotContains(t, output, "not 1.0")
}

func TestPrintRequirements_Unbalanced(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	reqs := &types.JobRequirements{JobTitle: "QA"}
	for i := 0; i < 7; i++ {
		reqs.Requirements = append(reqs.Requirements, types.Requirement{Name: "Req", Weight: 0.1})
	}
	p.PrintRequirements(reqs)
	output := buf.String()

	assert.Contains(t, output, "0.70")
	assert.Contains(t, output, "not 1.0")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintRequirements_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRequirements(nil)
	assert.Empty(t, buf.String())
}

func TestPrintEvaluation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvaluation(&types.ScoreEvaluation{
		JobTitle: "Java Engineer",
		Scores: []types.ScoreEntry{
			{Name: "Experience", Score: 90, Weight: 0.6, WeightedScore: 54},
			{Name: "Skills", Score: 50, Weight: 0.4, WeightedScore: 20},
		},
		TotalScore: 74,
	})
	output := buf.String()

	assert.Contains(t, output, "RESUME SCORE")
	assert.Contains(t, output, "90 × 0.60 =  54.00")
	assert.Contains(t, output, "Total:  74.00 / 100")
}

func TestPrintBatch_RanksByScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatch([]workflow.BatchResult{
		{ID: "alice", Evaluation: &types.ScoreEvaluation{TotalScore: 61}},
		{ID: "bob", Evaluation: &types.ScoreEvaluation{TotalScore: 88}},
		{ID: "carol"},
	})
	output := buf.String()

	assert.Contains(t, output, "Graded 3 resumes")
	assert.Less(t, strings.Index(output, "bob"), strings.Index(output, "alice"))
	assert.NotContains(t, output, "carol")
}

func TestPrintRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRun(&workflow.RunResult{
		JD:          "Java Engineer\nline 2\nline 3\nline 4\nline 5\nline 6\nline 7",
		FocusPoints: "Java experience",
	})
	output := buf.String()

	assert.Contains(t, output, "JOB DESCRIPTION")
	assert.Contains(t, output, "... and 2 more lines")
	assert.Contains(t, output, "FOCUS POINTS")
	assert.NotContains(t, output, "RESUME SCORE")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}
