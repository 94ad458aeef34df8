package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/hr-assistant/internal/llm/llmtest"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticResume(text string) ResumeLoader {
	return func(context.Context) (string, error) { return text, nil }
}

func TestGradeWithPhases(t *testing.T) {
	fake := llmtest.NewFakeClient(llmtest.Reply(stubEvaluation))
	o := newTestOrchestrator(fake)

	var phases []string
	eval, err := o.GradeWithPhases(context.Background(), testRequirements(), staticResume("Java, Spring"), func(msg string) error {
		phases = append(phases, msg)
		return nil
	})
	require.NoError(t, err)
	assert.InDelta(t, 79.0, eval.TotalScore, 1e-6)
	assert.Equal(t, GradingPhases, phases)
}

func TestGradeWithPhases_FailureSkipsDone(t *testing.T) {
	fake := llmtest.NewFakeClient(llmtest.Fail(errors.New("quota exceeded")))
	o := newTestOrchestrator(fake)

	var phases []string
	_, err := o.GradeWithPhases(context.Background(), testRequirements(), staticResume("Java"), func(msg string) error {
		phases = append(phases, msg)
		return nil
	})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageGradeResume, stageErr.Stage)
	assert.Equal(t, GradingPhases[:5], phases)
}

func TestGradeWithPhases_EmptyResume(t *testing.T) {
	fake := llmtest.NewFakeClient()
	o := newTestOrchestrator(fake)

	var phases []string
	_, err := o.GradeWithPhases(context.Background(), testRequirements(), staticResume("  "), func(msg string) error {
		phases = append(phases, msg)
		return nil
	})

	var verr *parsing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "resume", verr.Field)
	assert.Len(t, phases, 4)
	assert.Equal(t, 0, fake.Calls())
}

func TestGradeWithPhases_LoaderError(t *testing.T) {
	o := newTestOrchestrator(llmtest.NewFakeClient())
	loadErr := errors.New("object not found")

	_, err := o.GradeWithPhases(context.Background(), testRequirements(), func(context.Context) (string, error) {
		return "", loadErr
	}, nil)
	assert.ErrorIs(t, err, loadErr)
}

func TestGradeWithPhases_ReporterAborts(t *testing.T) {
	fake := llmtest.NewFakeClient(llmtest.Reply(stubEvaluation))
	o := newTestOrchestrator(fake)
	gone := errors.New("client went away")

	calls := 0
	_, err := o.GradeWithPhases(context.Background(), testRequirements(), staticResume("Java"), func(string) error {
		calls++
		if calls == 2 {
			return gone
		}
		return nil
	})
	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 0, fake.Calls())
}
