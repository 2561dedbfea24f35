package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound covers both "missing" and "present but not owned by the
	// caller". The two cases are deliberately indistinguishable so that a
	// caller cannot probe for the existence of other users' resources.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates the caller could not be resolved to a user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a write lost a version check or hit a
	// uniqueness constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvariant indicates an operation that would break a structural
	// invariant, e.g. deleting a user's default project.
	ErrInvariant = errors.New("invariant violation")
)

type (
	// NotFoundError indicates a resource was not found (or not owned)
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// InvariantError indicates a rejected invariant-breaking operation
	InvariantError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *InvariantError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *InvariantError) StatusCode() int    { return http.StatusConflict }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *InvariantError) Is(target error) bool    { return target == ErrInvariant }

// ConflictError represents a conflict with details about the existing or
// contended resource.
type ConflictError struct {
	Message      string
	ResourceType string // "project", "conversation", "user"
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
