// Package workflow orchestrates the HR workflows: drafting a job description,
// extracting focus points, structuring weighted requirements and grading
// resumes. Each stage renders one prompt, makes one LLM call and parses the answer.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/hr-assistant/internal/llm"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/prompts"
	"github.com/jonathan/hr-assistant/internal/types"
)

// Template bindings
const (
	bindJobName        = "jobName"
	bindJobDescription = "jobDescription"
	bindMainPoint      = "mainPoint"
	bindExtraPoint     = "extraPoint"
	bindBonusPoint     = "bonusPoint"
	bindJD             = "jd"
	bindWeights        = "weights"
	bindGrade          = "grade"
	bindResume         = "resume"
	bindText           = "text"
)

// StageError wraps the failure of a single stage. Unwrap returns the
// original *llm.GatewayError, *parsing.ParseError or *parsing.ValidationError.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Orchestrator runs workflow stages against an LLM client.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	client          llm.Client
	prompts         *prompts.Registry
	logger          *slog.Logger
	weightTolerance float64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWeightTolerance sets how far requirement weights may drift from 1.0 before a warning is logged.
func WithWeightTolerance(tol float64) Option {
	return func(o *Orchestrator) {
		if tol > 0 {
			o.weightTolerance = tol
		}
	}
}

// New creates an Orchestrator. A nil registry uses the embedded prompts and a
// nil logger uses slog.Default.
func New(client llm.Client, registry *prompts.Registry, logger *slog.Logger, opts ...Option) *Orchestrator {
	if registry == nil {
		registry = prompts.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		client:          client,
		prompts:         registry,
		logger:          logger,
		weightTolerance: types.WeightTolerance,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Prompts returns the registry the orchestrator renders from.
func (o *Orchestrator) Prompts() *prompts.Registry {
	return o.prompts
}

// GenerateJD drafts a job description from the HR job fields.
func (o *Orchestrator) GenerateJD(ctx context.Context, fields types.JobFields) (string, error) {
	if err := fields.Validate(); err != nil {
		return "", parsing.NewValidationError(err)
	}

	answer, err := o.call(ctx, StageGenerateJD, prompts.KeyJDGenerate, map[string]string{
		bindJobName:        fields.JobName,
		bindJobDescription: fields.JobDescription,
		bindMainPoint:      fields.MainPoint,
		bindExtraPoint:     fields.ExtraPoint,
		bindBonusPoint:     fields.BonusPoint,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// ExtractFocusPoints distills the most important one or two points of a JD.
func (o *Orchestrator) ExtractFocusPoints(ctx context.Context, jd string) (string, error) {
	if strings.TrimSpace(jd) == "" {
		return "", &parsing.ValidationError{Field: "jd", Message: "is required"}
	}

	answer, err := o.call(ctx, StageFocusPoints, prompts.KeyJDFocusPoints, map[string]string{bindJD: jd})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// StructureRequirements turns a JD and its focus points into weighted
// requirements. Weights that do not sum to 1.0 are logged, not rejected.
func (o *Orchestrator) StructureRequirements(ctx context.Context, jd, focusPoints string) (*types.JobRequirements, error) {
	if strings.TrimSpace(jd) == "" {
		return nil, &parsing.ValidationError{Field: "jd", Message: "is required"}
	}

	answer, err := o.call(ctx, StageRequirements, prompts.KeyJDToJSON, map[string]string{
		bindJD:      jd,
		bindWeights: focusPoints,
	})
	if err != nil {
		return nil, err
	}

	reqs, err := parsing.ParseRequirements(answer)
	if err != nil {
		return nil, err
	}
	if warning := parsing.CheckWeights(reqs, o.weightTolerance); warning != nil {
		o.logger.Warn("requirement weights are unbalanced",
			"job_title", reqs.JobTitle,
			"sum", warning.Sum,
			"requirements", len(reqs.Requirements))
	}
	return reqs, nil
}

// GradeResume scores a resume against weighted requirements.
func (o *Orchestrator) GradeResume(ctx context.Context, reqs *types.JobRequirements, resume string) (*types.ScoreEvaluation, error) {
	if reqs == nil {
		return nil, &parsing.ValidationError{Field: "requirements", Message: "is required"}
	}
	if err := reqs.Validate(); err != nil {
		return nil, parsing.NewValidationError(err)
	}
	if strings.TrimSpace(resume) == "" {
		return nil, &parsing.ValidationError{Field: "resume", Message: "is required"}
	}

	rubric, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode requirements: %w", err)
	}

	answer, err := o.call(ctx, StageGradeResume, prompts.KeyGradeResume, map[string]string{
		bindGrade:  string(rubric),
		bindResume: resume,
	})
	if err != nil {
		return nil, err
	}

	eval, adjusted, err := parsing.ParseScoreEvaluation(answer)
	if err != nil {
		return nil, err
	}
	if adjusted {
		o.logger.Warn("corrected model score arithmetic", "job_title", reqs.JobTitle, "total_score", eval.TotalScore)
	}
	if eval.JobTitle == "" {
		eval.JobTitle = reqs.JobTitle
	}
	return eval, nil
}

// PolishJD rewrites a raw job description as structured Markdown.
func (o *Orchestrator) PolishJD(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &parsing.ValidationError{Field: "text", Message: "is required"}
	}

	answer, err := o.call(ctx, StagePolishJD, prompts.KeyJDPolish, map[string]string{bindText: text})
	if err != nil {
		return "", err
	}
	return stripMarkdownFence(answer), nil
}

// ExtractJDFields pulls the key fields (title, location, skills...) out of a job description.
func (o *Orchestrator) ExtractJDFields(ctx context.Context, text string) (*types.JDFields, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &parsing.ValidationError{Field: "text", Message: "is required"}
	}

	answer, err := o.call(ctx, StageExtractFields, prompts.KeyJDExtractFields, map[string]string{bindText: text})
	if err != nil {
		return nil, err
	}
	return parsing.ParseJDFields(answer)
}

// call renders the template for key and sends it through the client.
// JSON-input templates get their bindings escaped.
func (o *Orchestrator) call(ctx context.Context, stage Stage, key string, bindings map[string]string) (string, error) {
	prompt, err := o.prompts.Render(key, bindings)
	if err != nil {
		return "", err
	}

	start := time.Now()
	answer, err := o.client.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	o.logger.Debug("stage answered", "stage", stage, "duration", time.Since(start), "answer_chars", len(answer))
	return answer, nil
}

// stripMarkdownFence removes a ```markdown fence wrapping the whole answer.
func stripMarkdownFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	body := strings.TrimSuffix(text[3:], "```")
	if idx := strings.Index(body, "\n"); idx >= 0 && !strings.Contains(body[:idx], " ") {
		body = body[idx+1:]
	}
	return strings.TrimSpace(body)
}
