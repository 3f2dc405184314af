package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error for callers that branch on failure kind
type Code string

const (
	// CodeUnknown indicates an unclassified error
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates the caller supplied a bad argument
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a character, class, or feature id did not resolve
	CodeNotFound Code = "not_found"

	// CodeAlreadyExists indicates an attempt to create a resource that already exists
	CodeAlreadyExists Code = "already_exists"

	// CodeInternal indicates an internal system error
	CodeInternal Code = "internal"

	// CodeValidation indicates a validation error
	CodeValidation Code = "validation"

	// CodeInvalidLevelTransition indicates a non-contiguous or already-reached target level
	CodeInvalidLevelTransition Code = "invalid_level_transition"

	// CodePrerequisiteNotMet indicates an ability-score or feat prerequisite failure
	CodePrerequisiteNotMet Code = "prerequisite_not_met"

	// CodeStructuralChoice indicates a wrong count, duplicate, or unknown option id
	CodeStructuralChoice Code = "structural_choice"

	// CodeConcurrencyConflict indicates the character changed since steps were resolved
	CodeConcurrencyConflict Code = "concurrency_conflict"

	// CodeAlreadyApplied indicates a duplicate commit of the same level-up
	CodeAlreadyApplied Code = "already_applied"
)

// Error is an application error with a code and optional metadata
type Error struct {
	// Code is the error code
	Code Code

	// Message is the error message
	Message string

	// Cause is the wrapped error
	Cause error

	// Meta contains additional context
	Meta map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(appErr.Meta),
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Helper constructors for the common codes

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// AlreadyExists creates an already exists error
func AlreadyExists(message string) *Error {
	return New(CodeAlreadyExists, message)
}

// AlreadyExistsf creates a formatted already exists error
func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Validationf creates a formatted validation error
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// InvalidLevelTransitionf creates a formatted invalid level transition error
func InvalidLevelTransitionf(format string, args ...any) *Error {
	return Newf(CodeInvalidLevelTransition, format, args...)
}

// PrerequisiteNotMetf creates a formatted prerequisite error
func PrerequisiteNotMetf(format string, args ...any) *Error {
	return Newf(CodePrerequisiteNotMet, format, args...)
}

// ConcurrencyConflictf creates a formatted concurrency conflict error
func ConcurrencyConflictf(format string, args ...any) *Error {
	return Newf(CodeConcurrencyConflict, format, args...)
}

// AlreadyAppliedf creates a formatted already applied error
func AlreadyAppliedf(format string, args ...any) *Error {
	return Newf(CodeAlreadyApplied, format, args...)
}

// Error checking helpers

// Is checks if the error carries a specific code
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return Is(err, CodeInvalidArgument)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return Is(err, CodeValidation)
}

// IsInvalidLevelTransition checks if the error is an invalid level transition
func IsInvalidLevelTransition(err error) bool {
	return Is(err, CodeInvalidLevelTransition)
}

// IsPrerequisiteNotMet checks if the error is a prerequisite failure
func IsPrerequisiteNotMet(err error) bool {
	return Is(err, CodePrerequisiteNotMet)
}

// IsConcurrencyConflict checks if the error is a stale-version conflict
func IsConcurrencyConflict(err error) bool {
	return Is(err, CodeConcurrencyConflict)
}

// IsAlreadyApplied checks if the error is a duplicate commit
func IsAlreadyApplied(err error) bool {
	return Is(err, CodeAlreadyApplied)
}

// GetCode returns the error code
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
