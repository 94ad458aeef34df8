package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/hr-assistant/internal/fetch"
	"github.com/jonathan/hr-assistant/internal/llm"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
	}{
		{"validation", &parsing.ValidationError{Field: "jobName", Message: "is required"}, KindValidation, http.StatusBadRequest},
		{"unsupported upload", fmt.Errorf("extract: %w", resume.ErrUnsupportedType), KindValidation, http.StatusUnsupportedMediaType},
		{"gateway", &llm.GatewayError{Provider: llm.ProviderOpenAI, Message: "bad status"}, KindGateway, http.StatusBadGateway},
		{"gateway timeout", &llm.GatewayError{Provider: llm.ProviderOpenAI, Message: "timed out", Cause: context.DeadlineExceeded}, KindGateway, http.StatusGatewayTimeout},
		{"parse", &parsing.ParseError{Message: "no JSON object found"}, KindParse, http.StatusBadGateway},
		{"fetch", &fetch.Error{URL: "https://jobs.example.com", Message: "HTTP status 404"}, KindFetch, http.StatusBadGateway},
		{"storage", &StorageError{Key: "cv.pdf", Cause: errors.New("access denied")}, KindStorage, http.StatusBadGateway},
		{"stream lifetime", progress.ErrLifetimeExceeded, KindTimeout, http.StatusGatewayTimeout},
		{"wrapped in stage", &workflow.StageError{Stage: workflow.StageRequirements, Err: &parsing.ParseError{Message: "bad"}}, KindParse, http.StatusBadGateway},
		{"unknown", errors.New("boom"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, status := classify(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	err := &workflow.StageError{
		Stage: workflow.StageFocusPoints,
		Err:   &llm.GatewayError{Provider: llm.ProviderZhipu, Message: "bad status"},
	}
	body := newErrorBody(err, "req-1")
	assert.Equal(t, KindGateway, body.Kind)
	assert.Equal(t, "focus_points", body.Stage)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, err.Error(), body.Message)

	internal := newErrorBody(errors.New("pq: password authentication failed"), "req-2")
	assert.Equal(t, KindInternal, internal.Kind)
	assert.Equal(t, "internal server error", internal.Message)
	assert.Empty(t, internal.Stage)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("NoSuchKey")
	err := &StorageError{Key: "cv/alice.pdf", Cause: cause}
	assert.Equal(t, "failed to load resume cv/alice.pdf: NoSuchKey", err.Error())
	assert.ErrorIs(t, err, cause)
}
