package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
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

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets the typed errors match their sentinel counterparts.
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Hierarchy violations. All of them are also ErrValidation.
	ErrInvalidParent     = errors.New("invalid parent")
	ErrCircularReference = errors.New("circular reference")
	ErrNotEmpty          = errors.New("folder not empty")

	// ErrStoreFailure marks errors raised by the underlying store.
	ErrStoreFailure = errors.New("store failure")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (node, project)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidParentError is returned when a referenced parent is missing, lives in
// another project, or is not a folder.
type InvalidParentError struct {
	ParentID string
	Reason   string
}

func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("invalid parent %s: %s", e.ParentID, e.Reason)
}

func (e *InvalidParentError) StatusCode() int { return http.StatusBadRequest }

func (e *InvalidParentError) Is(target error) bool {
	return target == ErrInvalidParent || target == ErrValidation
}

// CircularReferenceError is returned when a move would make a node its own ancestor.
type CircularReferenceError struct {
	NodeID   string
	ParentID string
}

func (e *CircularReferenceError) Error() string {
	if e.NodeID == e.ParentID {
		return fmt.Sprintf("circular reference: node %s cannot be its own parent", e.NodeID)
	}
	return fmt.Sprintf("circular reference: node %s cannot be moved under its descendant %s", e.NodeID, e.ParentID)
}

func (e *CircularReferenceError) StatusCode() int { return http.StatusBadRequest }

func (e *CircularReferenceError) Is(target error) bool {
	return target == ErrCircularReference || target == ErrValidation
}

// NotEmptyError is returned when a folder with children is deleted without cascade.
// ChildCount is surfaced so callers can ask for a cascade confirmation.
type NotEmptyError struct {
	NodeID     string
	ChildCount int
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("folder %s is not empty (%d children); retry with cascade", e.NodeID, e.ChildCount)
}

func (e *NotEmptyError) StatusCode() int { return http.StatusBadRequest }

func (e *NotEmptyError) Is(target error) bool {
	return target == ErrNotEmpty || target == ErrValidation
}

// StoreError wraps a failed store call with the operation that issued it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) StatusCode() int { return http.StatusInternalServerError }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}
