// Package errors provides centralized error definitions and error handling
// utilities for adaptui. It defines domain sentinels, typed errors that carry
// trigger and element context, and classification helpers.
//
// # Error Types
//
// Domain-specific errors:
//   - AdaptationError: a trigger, coordinator or dispatch failure
//   - StoreError: a failure in the adaptation history journal
//
// Semantic errors:
//   - NotFoundError: a trigger or record does not exist
//   - ValidationError: invalid input or configuration
//
// # Usage
//
//	err := errors.NewAdaptationError("dispatch rejected", errors.ErrLayoutCountMismatch).
//	    WithTrigger("menu").
//	    WithElement("toolbar")
//
//	if errors.Is(err, errors.ErrLayoutCountMismatch) { ... }
//
//	var adaptErr *errors.AdaptationError
//	if errors.As(err, &adaptErr) { ... }
//
// The adaptation core itself never surfaces errors to its callers; these
// types are used for logging, events and the outer surfaces (CLI, HTTP).
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers need only this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are only useful when debugging.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Adaptation sentinel errors
var (
	// ErrCoordinatorClaimed indicates a coordinator already has an owning trigger.
	ErrCoordinatorClaimed = New("coordinator already claimed by another trigger")
	// ErrLayoutCountMismatch indicates the optimizer returned a different
	// number of layouts than the coordinator manages.
	ErrLayoutCountMismatch = New("layout count does not match managed elements")
	// ErrNoLayouts indicates an accepted candidate carried no layouts.
	ErrNoLayouts = New("no layouts to dispatch")
	// ErrTriggerNotFound indicates a trigger ID is unknown.
	ErrTriggerNotFound = New("trigger not found")
	// ErrTriggerExists indicates a trigger ID is already registered.
	ErrTriggerExists = New("trigger already exists")
)

// General sentinel errors
var (
	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = New("invalid configuration")
	// ErrHistoryClosed indicates the history journal has been closed.
	ErrHistoryClosed = New("history journal closed")
	// ErrRecordNotFound indicates a history record does not exist.
	ErrRecordNotFound = New("record not found")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// AdaptuiError is the base interface for all typed errors in this module.
type AdaptuiError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	IsRetryable() bool
}

type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }

func (e *baseError) IsRetryable() bool { return e.retryable }

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// AdaptationError represents a failure while evaluating, optimizing or
// dispatching a layout.
//
// Example:
//
//	err := errors.NewAdaptationError("optimize failed", cause).WithTrigger("menu")
//	fmt.Println(err) // "adaptation error [trigger=menu]: optimize failed: ..."
type AdaptationError struct {
	baseError
	TriggerID string
	ElementID string
	Phase     string
}

// NewAdaptationError creates a new AdaptationError. Adaptation failures
// are retryable by default since the trigger loop retries every period.
func NewAdaptationError(message string, cause error) *AdaptationError {
	return &AdaptationError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityWarning,
			retryable: true,
		},
	}
}

// WithTrigger adds the trigger ID to the error context.
func (e *AdaptationError) WithTrigger(id string) *AdaptationError {
	e.TriggerID = id
	return e
}

// WithElement adds the element ID to the error context.
func (e *AdaptationError) WithElement(id string) *AdaptationError {
	e.ElementID = id
	return e
}

// WithPhase adds the loop phase (evaluate, optimize, dispatch).
func (e *AdaptationError) WithPhase(phase string) *AdaptationError {
	e.Phase = phase
	return e
}

// WithSeverity sets the error severity.
func (e *AdaptationError) WithSeverity(s Severity) *AdaptationError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *AdaptationError) WithRetryable(r bool) *AdaptationError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *AdaptationError) Error() string {
	var parts []string
	if e.TriggerID != "" {
		parts = append(parts, "trigger="+e.TriggerID)
	}
	if e.ElementID != "" {
		parts = append(parts, "element="+e.ElementID)
	}
	if e.Phase != "" {
		parts = append(parts, "phase="+e.Phase)
	}
	return e.format("adaptation error", parts)
}

// Is checks if this error matches the target.
func (e *AdaptationError) Is(target error) bool {
	if _, ok := target.(*AdaptationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StoreError represents a failure in the adaptation history journal.
type StoreError struct {
	baseError
	Path   string
	Bucket string
}

// NewStoreError creates a new StoreError.
func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithPath adds the database path to the error context.
func (e *StoreError) WithPath(path string) *StoreError {
	e.Path = path
	return e
}

// WithBucket adds the bucket name to the error context.
func (e *StoreError) WithBucket(bucket string) *StoreError {
	e.Bucket = bucket
	return e
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}
	if e.Bucket != "" {
		parts = append(parts, "bucket="+e.Bucket)
	}
	return e.format("store error", parts)
}

// Is checks if this error matches the target.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates that a resource was not found.
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:  fmt.Sprintf("%s not found", resourceType),
			severity: SeverityWarning,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds an underlying cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("%s not found", e.ResourceType)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError indicates invalid input.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithField adds the offending field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds an underlying cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	msg := e.message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Value != nil {
		msg = fmt.Sprintf("%s (got: %v)", msg, e.Value)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidConfig {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// IsRetryable reports whether the operation that produced err may succeed
// on a later attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var typed AdaptuiError
	if As(err, &typed) {
		return typed.IsRetryable()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement AdaptuiError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var typed AdaptuiError
	if As(err, &typed) {
		return typed.Severity()
	}
	return SeverityError
}

// IsNotFound reports whether err describes a missing resource.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *NotFoundError
	return As(err, &nf) || Is(err, ErrTriggerNotFound) || Is(err, ErrRecordNotFound)
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
