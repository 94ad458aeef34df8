package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/types"
)

// Progress statuses
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
)

// ProgressEvent represents a progress update during workflow execution
type ProgressEvent struct {
	Stage   Stage  `json:"stage"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when workflow progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds the inputs of a full workflow run
type RunOptions struct {
	Fields     types.JobFields
	Resume     string
	OnProgress ProgressCallback
}

// RunResult holds the output of every completed stage
type RunResult struct {
	JD           string                 `json:"jd"`
	FocusPoints  string                 `json:"focusPoints"`
	Requirements *types.JobRequirements `json:"requirements,omitempty"`
	Evaluation   *types.ScoreEvaluation `json:"evaluation,omitempty"`
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, stage Stage, status, message string, content any) {
	if opts.OnProgress == nil {
		return
	}
	_, idx, _ := Definition(stage)
	opts.OnProgress(ProgressEvent{
		Stage:   stage,
		Status:  status,
		Message: message,
		Index:   idx + 1,
		Total:   len(Pipeline),
		Content: content,
	})
}

// Run executes the four pipeline stages in order: generate the JD, extract
// its focus points, structure the requirements and grade the resume. The
// first failure stops the run; later stages are not started. The returned
// result holds the outputs of the stages that completed, and the error is a
// *StageError naming the failed stage.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := opts.Fields.Validate(); err != nil {
		return nil, parsing.NewValidationError(err)
	}
	if strings.TrimSpace(opts.Resume) == "" {
		return nil, &parsing.ValidationError{Field: "resume", Message: "is required"}
	}

	result := &RunResult{}
	runStart := time.Now()

	stage := func(s Stage, fn func() (any, string, error)) error {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: s, Err: err}
		}
		def, idx, _ := Definition(s)
		emitProgress(&opts, s, StatusStarted, def.Description, nil)

		start := time.Now()
		content, summary, err := fn()
		if err != nil {
			o.logger.Warn("workflow stage failed", "stage", s, "index", idx+1, "duration", time.Since(start), "error", err)
			return &StageError{Stage: s, Err: err}
		}
		o.logger.Info("workflow stage completed", "stage", s, "index", idx+1, "duration", time.Since(start))
		emitProgress(&opts, s, StatusCompleted, summary, content)
		return nil
	}

	if err := stage(StageGenerateJD, func() (any, string, error) {
		jd, err := o.GenerateJD(ctx, opts.Fields)
		result.JD = jd
		return jd, fmt.Sprintf("Generated job description for %s", opts.Fields.JobName), err
	}); err != nil {
		return result, err
	}

	if err := stage(StageFocusPoints, func() (any, string, error) {
		points, err := o.ExtractFocusPoints(ctx, result.JD)
		result.FocusPoints = points
		return points, "Extracted focus points", err
	}); err != nil {
		return result, err
	}

	if err := stage(StageRequirements, func() (any, string, error) {
		reqs, err := o.StructureRequirements(ctx, result.JD, result.FocusPoints)
		if err != nil {
			return nil, "", err
		}
		result.Requirements = reqs
		return reqs, fmt.Sprintf("Structured %d weighted requirements", len(reqs.Requirements)), nil
	}); err != nil {
		return result, err
	}

	if err := stage(StageGradeResume, func() (any, string, error) {
		eval, err := o.GradeResume(ctx, result.Requirements, opts.Resume)
		if err != nil {
			return nil, "", err
		}
		result.Evaluation = eval
		return eval, fmt.Sprintf("Resume scored %.1f", eval.TotalScore), nil
	}); err != nil {
		return result, err
	}

	o.logger.Info("workflow run completed", "job", opts.Fields.JobName, "duration", time.Since(runStart))
	return result, nil
}
