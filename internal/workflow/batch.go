package workflow

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/types"
)

// DefaultBatchConcurrency bounds parallel grading calls when no limit is given.
const DefaultBatchConcurrency = 4

// Candidate is one resume submitted for batch grading.
type Candidate struct {
	ID     string `json:"id"`
	Resume string `json:"resume"`
}

// BatchResult is the evaluation of one candidate.
type BatchResult struct {
	ID         string                 `json:"id"`
	Evaluation *types.ScoreEvaluation `json:"evaluation"`
}

// GradeBatch grades several resumes against the same requirements with at
// most limit calls in flight. Results keep the input order. The first failure
// cancels the remaining calls and is returned.
func (o *Orchestrator) GradeBatch(ctx context.Context, reqs *types.JobRequirements, candidates []Candidate, limit int) ([]BatchResult, error) {
	if reqs == nil {
		return nil, &parsing.ValidationError{Field: "requirements", Message: "is required"}
	}
	if len(candidates) == 0 {
		return nil, &parsing.ValidationError{Field: "resumes", Message: "must contain at least 1 item(s)"}
	}
	for i, c := range candidates {
		if strings.TrimSpace(c.Resume) == "" {
			return nil, &parsing.ValidationError{Field: fmt.Sprintf("resumes[%d]", i), Message: "is required"}
		}
	}
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, c := range candidates {
		g.Go(func() error {
			eval, err := o.GradeResume(gCtx, reqs, c.Resume)
			if err != nil {
				return fmt.Errorf("grading %s: %w", candidateLabel(c, i), err)
			}
			results[i] = BatchResult{ID: c.ID, Evaluation: eval}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Info("batch grading completed", "job_title", reqs.JobTitle, "candidates", len(candidates), "concurrency", limit)
	return results, nil
}

func candidateLabel(c Candidate, i int) string {
	if c.ID != "" {
		return c.ID
	}
	return fmt.Sprintf("resume %d", i)
}
