// Package domain contains the verse recommendation types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/CLI output by adapters.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested verse does not exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a facet query or fact base record is invalid.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrMatchEngine indicates the fact base query mechanism failed.
	ErrMatchEngine = errors.New("match engine failure")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// QueryValidationError collects every invalid facet of a query.
// It is returned instead of evaluating the query.
type QueryValidationError struct {
	Violations []*ValidationError
}

// Error implements the error interface.
func (e *QueryValidationError) Error() string {
	return "invalid facet query: " + strings.Join(e.Messages(), "; ")
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *QueryValidationError) Unwrap() error {
	return ErrValidation
}

// Messages returns one human-readable message per invalid field.
func (e *QueryValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}

	return msgs
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// MatchEngineError wraps an unexpected failure of a match backend.
// The cause is kept for logs and never shown to callers.
type MatchEngineError struct {
	Engine string
	Cause  error
}

// Error implements the error interface.
func (e *MatchEngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("match engine %q failed: %v", e.Engine, e.Cause)
	}

	return fmt.Sprintf("match engine %q failed", e.Engine)
}

// Is reports whether target is ErrMatchEngine.
func (e *MatchEngineError) Is(target error) bool {
	return target == ErrMatchEngine
}

// Unwrap returns the underlying cause.
func (e *MatchEngineError) Unwrap() error {
	return e.Cause
}

// NewMatchEngineError creates a match engine error.
func NewMatchEngineError(engine string, cause error) error {
	return &MatchEngineError{Engine: engine, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsMatchEngine checks if an error is a match engine error.
func IsMatchEngine(err error) bool {
	return errors.Is(err, ErrMatchEngine)
}
