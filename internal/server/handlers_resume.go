package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/types"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

// GradeRequest is the body of POST /resume/grade and the JSON form of
// POST /resume/grade/stream. Resume text wins over ResumeKey.
type GradeRequest struct {
	Requirements *types.JobRequirements `json:"requirements"`
	Resume       string                 `json:"resume,omitempty"`
	ResumeKey    string                 `json:"resumeKey,omitempty"`
}

// BatchResume is one resume of a batch, given inline or by storage key.
type BatchResume struct {
	ID      string `json:"id"`
	Content string `json:"content,omitempty"`
	Key     string `json:"key,omitempty"`
}

// BatchRequest is the body of POST /resume/grade/batch.
type BatchRequest struct {
	Requirements *types.JobRequirements `json:"requirements"`
	Resumes      []BatchResume          `json:"resumes"`
}

// handleGradeResume scores one resume against structured requirements.
func (s *Server) handleGradeResume(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	text, err := s.resolveResume(r.Context(), req.Resume, req.ResumeKey, "resume")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	eval, err := s.orchestrator.GradeResume(r.Context(), req.Requirements, text)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, eval)
}

// handleGradeBatch scores several resumes against the same requirements.
func (s *Server) handleGradeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	candidates := make([]workflow.Candidate, 0, len(req.Resumes))
	for i, item := range req.Resumes {
		text, err := s.resolveResume(r.Context(), item.Content, item.Key, fmt.Sprintf("resumes[%d]", i))
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		candidates = append(candidates, workflow.Candidate{ID: item.ID, Resume: text})
	}

	results, err := s.orchestrator.GradeBatch(r.Context(), req.Requirements, candidates, s.batchConcurrency)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, results)
}

// handleGradeStream scores a resume while streaming the grading phases as
// SSE. The body is either a GradeRequest or a multipart form with a
// "requirements" JSON field and a "file" upload.
func (s *Server) handleGradeStream(w http.ResponseWriter, r *http.Request) {
	reqs, load, err := s.parseGradeStream(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.streamTask(w, r, func(ctx context.Context, rep *progress.Reporter) (any, error) {
		eval, err := s.orchestrator.GradeWithPhases(ctx, reqs, load, rep.Report)
		if err != nil {
			return nil, err
		}
		return eval, nil
	})
}

// parseGradeStream reads the requirements of a streamed grading and returns
// a loader producing the resume text once the stream runs.
func (s *Server) parseGradeStream(w http.ResponseWriter, r *http.Request) (*types.JobRequirements, workflow.ResumeLoader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req GradeRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			return nil, nil, err
		}
		load := func(ctx context.Context) (string, error) {
			return s.resolveResume(ctx, req.Resume, req.ResumeKey, "resume")
		}
		return req.Requirements, load, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, resume.MaxDocumentSize+maxBodyBytes)
	if err := r.ParseMultipartForm(resume.MaxDocumentSize); err != nil {
		return nil, nil, &parsing.ValidationError{Field: "body", Message: "invalid multipart form: " + err.Error()}
	}

	var reqs types.JobRequirements
	raw := r.FormValue("requirements")
	if !hasText(raw) {
		return nil, nil, &parsing.ValidationError{Field: "requirements", Message: "is required"}
	}
	if err := json.Unmarshal([]byte(raw), &reqs); err != nil {
		return nil, nil, &parsing.ValidationError{Field: "requirements", Message: "invalid JSON: " + err.Error()}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, &parsing.ValidationError{Field: "file", Message: err.Error()}
		}
		text, key := r.FormValue("resume"), r.FormValue("resumeKey")
		load := func(ctx context.Context) (string, error) {
			return s.resolveResume(ctx, text, key, "file")
		}
		return &reqs, load, nil
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, resume.MaxDocumentSize+1))
	if err != nil {
		return nil, nil, &parsing.ValidationError{Field: "file", Message: "could not be read"}
	}
	if len(data) > resume.MaxDocumentSize {
		return nil, nil, &parsing.ValidationError{Field: "file", Message: fmt.Sprintf("exceeds %d bytes", resume.MaxDocumentSize)}
	}

	docType := header.Header.Get("Content-Type")
	if docType == "" || docType == "application/octet-stream" {
		docType = resume.DetectMIME(header.Filename, data)
	}
	load := func(context.Context) (string, error) {
		return resume.ExtractText(docType, data)
	}
	return &reqs, load, nil
}

// resolveResume returns inline resume text, or loads the document stored
// under key. field names the input in validation errors.
func (s *Server) resolveResume(ctx context.Context, text, key, field string) (string, error) {
	if hasText(text) {
		return text, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", &parsing.ValidationError{Field: field, Message: "is required"}
	}
	if s.resumes == nil {
		return "", &parsing.ValidationError{Field: field, Message: "resume storage is not configured"}
	}

	content, err := resume.LoadText(ctx, s.resumes, key)
	if err != nil {
		if errors.Is(err, resume.ErrUnsupportedType) {
			return "", err
		}
		return "", &StorageError{Key: key, Cause: err}
	}
	return content, nil
}
