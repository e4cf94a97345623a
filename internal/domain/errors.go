package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrPolicyViolation = errors.New("bucket policy violation")
)

// ErrRowLevelSecurity is returned when a write would create a row or object
// outside the actor's own namespace.
var ErrRowLevelSecurity = fmt.Errorf("new row violates row-level security policy: %w", ErrForbidden)

// PolicyRule names the bucket policy check that rejected an upload.
type PolicyRule string

const (
	RuleVisibility PolicyRule = "visibility"
	RuleSize       PolicyRule = "size"
	RuleMimeType   PolicyRule = "mime_type"
)

// PolicyViolationError reports the first bucket policy rule an upload failed.
type PolicyViolationError struct {
	Rule    PolicyRule
	Message string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPolicyViolation, e.Message)
}

// StatusCode implements the HTTPError interface
func (e *PolicyViolationError) StatusCode() int {
	if e.Rule == RuleSize {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusUnprocessableEntity
}

// Is allows errors.Is() to match against ErrPolicyViolation
func (e *PolicyViolationError) Is(target error) bool {
	return target == ErrPolicyViolation
}

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (file, object)
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
