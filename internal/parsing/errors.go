// Package parsing turns raw LLM answers into validated domain structures and
// defines the parse and input validation errors of the HR workflows.
package parsing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ParseError represents an LLM answer that could not be turned into the
// expected structure.
type ParseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents caller input that was rejected before any LLM call
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError converts an error returned by the validator package into
// a *ValidationError naming the first failing field.
func NewValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   lowerFirst(fe.Field()),
			Message: describeTag(fe),
		}
	}
	return &ValidationError{Message: err.Error()}
}

// WeightWarning reports requirement weights that do not sum to 1.0. It is a
// soft failure: the requirements are still usable.
type WeightWarning struct {
	Sum       float64
	Tolerance float64
}

func (w *WeightWarning) Error() string {
	return fmt.Sprintf("requirement weights sum to %.3f, expected 1.0 (tolerance %.3f)", w.Sum, w.Tolerance)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
