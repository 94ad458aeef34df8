package server

import (
	"context"
	"net/http"

	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/types"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

// RunRequest is the body of POST /workflow/run and /workflow/run/stream.
type RunRequest struct {
	Job       types.JobFields `json:"job"`
	Resume    string          `json:"resume,omitempty"`
	ResumeKey string          `json:"resumeKey,omitempty"`
}

// handleRun executes the whole workflow and returns every stage output.
// A failed run answers with the error and the outputs of the completed stages.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	text, err := s.resolveResume(r.Context(), req.Resume, req.ResumeKey, "resume")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	result, err := s.orchestrator.Run(r.Context(), workflow.RunOptions{Fields: req.Job, Resume: text})
	if err != nil {
		var extra map[string]any
		if result != nil {
			extra = map[string]any{"partial": result}
		}
		s.errorResponseWith(w, r, err, extra)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRunStream executes the workflow and streams stage progress as SSE.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Job.Validate(); err != nil {
		s.errorResponse(w, r, parsing.NewValidationError(err))
		return
	}
	if !hasText(req.Resume) && !hasText(req.ResumeKey) {
		s.errorResponse(w, r, &parsing.ValidationError{Field: "resume", Message: "is required"})
		return
	}

	s.streamTask(w, r, func(ctx context.Context, rep *progress.Reporter) (any, error) {
		text, err := s.resolveResume(ctx, req.Resume, req.ResumeKey, "resume")
		if err != nil {
			return nil, err
		}

		result, err := s.orchestrator.Run(ctx, workflow.RunOptions{
			Fields: req.Job,
			Resume: text,
			OnProgress: func(event workflow.ProgressEvent) {
				// Errors mean the stream ended; the run context is canceled with it.
				_ = rep.ReportData(event.Message, event)
			},
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}
