package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrGenerationFailed  = errors.New("content generation failed")
	ErrInvalidTransition = errors.New("invalid migration transition")
)

// NotFoundError indicates a resource was not found
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return e.ResourceType + " " + e.ResourceID + ": not found"
}

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Is allows errors.Is() to match against ErrNotFound
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError carries per-field problems found while validating a document
// or request. Fields maps a JSON-pointer-ish location ("sections.0.media.1.path")
// to its message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrValidation.Error()
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransitionError is returned when a migration row is asked to move to a state
// that is not reachable from its current one.
type TransitionError struct {
	LessonID string
	From     string
	To       string
}

func (e *TransitionError) Error() string {
	return "lesson " + e.LessonID + ": cannot move migration state from " + e.From + " to " + e.To
}

func (e *TransitionError) StatusCode() int { return http.StatusConflict }

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
