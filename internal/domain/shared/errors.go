// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Configuration errors are process-level: they indicate a broken
	// deployment, not a bad request, and should alert operators.
	ErrConfiguration = errors.New("configuration error")

	// External service errors
	ErrExternalService = errors.New("external service error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "profile", "course", "prediction"
	Op      string // Operation that failed, e.g., "Map", "Resolve"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound     = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrEmailTaken       = NewDomainError("user", "Register", ErrAlreadyExists, "email already registered")
	ErrBadCredentials   = NewDomainError("user", "Login", ErrUnauthorized, "invalid email or password")
	ErrUserInactive     = NewDomainError("user", "Login", ErrForbidden, "user account is inactive")
	ErrInvalidUserID    = NewDomainError("user", "Validate", ErrInvalidID, "invalid user ID")
	ErrInvalidUserEmail = NewDomainError("user", "Validate", ErrInvalidInput, "invalid email address")
)

// Profile domain errors
var (
	ErrProfileNotFound = NewDomainError("profile", "Find", ErrNotFound, "student profile not found")
	ErrProfileMapping  = NewDomainError("profile", "Map", ErrInvalidFormat, "profile cannot be mapped to features")
)

// Course domain errors
var (
	ErrCourseNotFound   = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrEmptyCourseCode  = NewDomainError("course", "Validate", ErrEmptyValue, "course code cannot be empty")
	ErrInvalidSemWindow = NewDomainError("course", "Resolve", ErrValueOutOfRange, "semester window must be between 0 and 3")
)

// Prediction domain errors
var (
	ErrUnsupportedModel = NewDomainError("prediction", "Predict", ErrConfiguration, "model exposes neither probability nor regression capability")
	ErrModelArtifact    = NewDomainError("prediction", "Load", ErrConfiguration, "model artifact is unusable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a request-level validation error.
// Validation errors are reported to the caller with enough detail to fix
// the request; they are never retried.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsConfiguration checks if the error is a process-level configuration
// error. These should alert operators, not be silently retried.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
