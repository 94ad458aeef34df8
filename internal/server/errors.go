package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/hr-assistant/internal/fetch"
	"github.com/jonathan/hr-assistant/internal/llm"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

// Error kinds reported to clients
const (
	KindValidation = "validation"
	KindParse      = "parse"
	KindGateway    = "gateway"
	KindFetch      = "fetch"
	KindStorage    = "storage"
	KindTimeout    = "timeout"
	KindInternal   = "internal"
)

// StorageError indicates a stored resume could not be loaded.
type StorageError struct {
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to load resume %s: %v", e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// ErrorBody is the payload of every error response and SSE error event.
type ErrorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Stage     string `json:"stage,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// classify maps an error to its client-facing kind and HTTP status.
func classify(err error) (string, int) {
	var (
		validationErr *parsing.ValidationError
		parseErr      *parsing.ParseError
		gatewayErr    *llm.GatewayError
		fetchErr      *fetch.Error
		storageErr    *StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		return KindValidation, http.StatusBadRequest
	case errors.Is(err, resume.ErrUnsupportedType):
		return KindValidation, http.StatusUnsupportedMediaType
	case errors.As(err, &gatewayErr):
		if gatewayErr.Timeout() {
			return KindGateway, http.StatusGatewayTimeout
		}
		return KindGateway, http.StatusBadGateway
	case errors.As(err, &parseErr):
		return KindParse, http.StatusBadGateway
	case errors.As(err, &fetchErr):
		return KindFetch, http.StatusBadGateway
	case errors.As(err, &storageErr):
		return KindStorage, http.StatusBadGateway
	case errors.Is(err, progress.ErrLifetimeExceeded), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, http.StatusGatewayTimeout
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	_, status := classify(err)
	return status
}

// newErrorBody builds the client payload of err. Internal errors are not
// described beyond a generic message.
func newErrorBody(err error, requestID string) ErrorBody {
	kind, _ := classify(err)
	body := ErrorBody{Kind: kind, Message: err.Error(), RequestID: requestID}
	if kind == KindInternal {
		body.Message = "internal server error"
	}

	var stageErr *workflow.StageError
	if errors.As(err, &stageErr) {
		body.Stage = string(stageErr.Stage)
	}
	return body
}
