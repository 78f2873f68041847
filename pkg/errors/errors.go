// Package errors provides the application's consolidated error taxonomy.
//
// It unifies two divergent styles found in the originating tree (a thin
// three-kind AppError and a richer eleven-kind UnifiedError) into one type
// that maps 1:1 onto the nine abstract error kinds the tool surface reports.
package errors

import (
	"errors"
	"fmt"
)

// Kind is an abstract error category, independent of transport status code.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindAuthRequired       Kind = "auth_required"
	KindAuthForbidden      Kind = "auth_forbidden"
	KindNotFound           Kind = "not_found"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindPartialSuccess     Kind = "partial_success"
	KindRateLimited        Kind = "rate_limited"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal"
)

// AppError is the single error type used across the application.
type AppError struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Cause   error
	// Retryable hints whether the caller can usefully retry the operation.
	Retryable bool
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches an underlying error, preserving Kind/Message.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithDetails attaches structured, non-sensitive detail fields.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func new(kind Kind, message string, retryable bool) *AppError {
	return &AppError{Kind: kind, Message: message, Retryable: retryable}
}

func NewValidationError(message string) *AppError { return new(KindValidation, message, false) }
func NewAuthRequiredError(message string) *AppError {
	return new(KindAuthRequired, message, false)
}
func NewForbiddenError(message string) *AppError { return new(KindAuthForbidden, message, false) }
func NewNotFoundError(message string) *AppError  { return new(KindNotFound, message, false) }
func NewBackendUnavailableError(message string) *AppError {
	return new(KindBackendUnavailable, message, true)
}
func NewPartialSuccessError(message string) *AppError {
	return new(KindPartialSuccess, message, false)
}
func NewRateLimitedError(message string) *AppError { return new(KindRateLimited, message, true) }
func NewConflictError(message string) *AppError    { return new(KindConflict, message, true) }
func NewInternalError(message string) *AppError    { return new(KindInternal, message, false) }

// Wrap preserves the Kind of an existing AppError, or produces an internal
// error for anything else.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Kind:      appErr.Kind,
			Message:   fmt.Sprintf("%s: %s", message, appErr.Message),
			Cause:     appErr.Cause,
			Retryable: appErr.Retryable,
		}
	}
	return &AppError{Kind: KindInternal, Message: message, Cause: err}
}

func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }
