package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/hr-assistant/internal/fetch"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/types"
)

// FocusPointsRequest is the body of POST /jd/focus-points.
type FocusPointsRequest struct {
	JD string `json:"jd"`
}

// RequirementsRequest is the body of POST /jd/requirements.
type RequirementsRequest struct {
	JD      string `json:"jd"`
	Weights string `json:"weights"`
}

// RequirementsResponse carries the structured requirements and, when their
// weights do not sum to 1, a warning.
type RequirementsResponse struct {
	*types.JobRequirements
	Warning string `json:"warning,omitempty"`
}

// TextRequest is the body of POST /jd/polish and POST /jd/extract. Extract
// also accepts a URL of a job posting instead of text.
type TextRequest struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// handleGenerateJD drafts a job description from HR fields.
func (s *Server) handleGenerateJD(w http.ResponseWriter, r *http.Request) {
	var fields types.JobFields
	if err := s.decodeJSON(w, r, &fields); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	jd, err := s.orchestrator.GenerateJD(r.Context(), fields)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"jd": jd})
}

// handleFocusPoints extracts the focus points of a job description.
func (s *Server) handleFocusPoints(w http.ResponseWriter, r *http.Request) {
	var req FocusPointsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	points, err := s.orchestrator.ExtractFocusPoints(r.Context(), req.JD)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"focusPoints": points})
}

// handleRequirements structures a job description into weighted requirements.
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	var req RequirementsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	reqs, err := s.orchestrator.StructureRequirements(r.Context(), req.JD, req.Weights)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp := RequirementsResponse{JobRequirements: reqs}
	if warning := parsing.CheckWeights(reqs, s.weightTolerance); warning != nil {
		resp.Warning = warning.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handlePolishJD rewrites raw JD text as Markdown.
func (s *Server) handlePolishJD(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	markdown, err := s.orchestrator.PolishJD(r.Context(), req.Text)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"markdown": markdown})
}

// handleExtractJD pulls the key fields out of JD text or a job posting page.
func (s *Server) handleExtractJD(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	text := req.Text
	if !hasText(text) {
		url := strings.TrimSpace(req.URL)
		if url == "" {
			s.errorResponse(w, r, &parsing.ValidationError{Field: "text", Message: "text or url is required"})
			return
		}
		page, err := fetch.JobPage(r.Context(), url, s.fetchOpts)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		text = page
	}

	fields, err := s.orchestrator.ExtractJDFields(r.Context(), text)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, fields)
}
