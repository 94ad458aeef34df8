package workflow

import (
	"context"
	"strings"

	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/types"
)

// GradingPhases are the progress messages of a streamed grading, in order.
var GradingPhases = []string{
	"Initializing...",
	"Fetching job info...",
	"Extracting resume features...",
	"Matching resume...",
	"Scoring resume...",
	"Done, refresh the page for score details",
}

// ResumeLoader produces the resume text of a streamed grading.
type ResumeLoader func(ctx context.Context) (string, error)

// Reporter receives phase messages. A non-nil error aborts the grading.
type Reporter func(message string) error

// GradeWithPhases grades a resume while reporting every entry of
// GradingPhases in order. The last phase is reported only after the
// evaluation succeeded.
func (o *Orchestrator) GradeWithPhases(ctx context.Context, reqs *types.JobRequirements, load ResumeLoader, report Reporter) (*types.ScoreEvaluation, error) {
	if report == nil {
		report = func(string) error { return nil }
	}

	if err := report(GradingPhases[0]); err != nil {
		return nil, err
	}

	if err := report(GradingPhases[1]); err != nil {
		return nil, err
	}
	if reqs == nil {
		return nil, &parsing.ValidationError{Field: "requirements", Message: "is required"}
	}
	if err := reqs.Validate(); err != nil {
		return nil, parsing.NewValidationError(err)
	}

	if err := report(GradingPhases[2]); err != nil {
		return nil, err
	}
	resume, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := report(GradingPhases[3]); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resume) == "" {
		return nil, &parsing.ValidationError{Field: "resume", Message: "contains no text"}
	}

	if err := report(GradingPhases[4]); err != nil {
		return nil, err
	}
	eval, err := o.GradeResume(ctx, reqs, resume)
	if err != nil {
		return nil, &StageError{Stage: StageGradeResume, Err: err}
	}

	if err := report(GradingPhases[5]); err != nil {
		return nil, err
	}
	return eval, nil
}
