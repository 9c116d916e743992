package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
)

// Error codes that refine an ErrorType
const (
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeAlreadyExists   = "ALREADY_EXISTS"
)

// Fixed messages for store failures. The cause is logged, never returned.
const (
	MessageStoreRead  = "Error reading from table"
	MessageStoreWrite = "Error writing to table"
	MessageForbidden  = "Forbidden"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	Cause      error     `json:"-"`
	StackTrace string    `json:"-"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

func newAppError(errType ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// Constructor functions for common error types

// NewBadRequestError creates a validation error
func NewBadRequestError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewBadRequestErrorf creates a validation error with a formatted message
func NewBadRequestErrorf(format string, args ...interface{}) *AppError {
	return NewBadRequestError(fmt.Sprintf(format, args...))
}

// NewMethodNotAllowedError creates an error for an unsupported method on a known route
func NewMethodNotAllowedError(method string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", method))
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message).WithCode(CodeAlreadyExists)
}

// NewVersionConflictError is returned when a newer version of a record was
// written between the read and the write of the caller.
func NewVersionConflictError(resourceID string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict,
		fmt.Sprintf("Publication %s was modified concurrently, fetch it again and retry", resourceID)).
		WithCode(CodeVersionConflict)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError creates a forbidden error. The message is always generic,
// callers log the reason themselves.
func NewForbiddenError() *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, MessageForbidden)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewStoreReadError creates a bad gateway error for failed table reads
func NewStoreReadError(err error) *AppError {
	return newAppError(ErrorTypeDatabase, http.StatusBadGateway, MessageStoreRead).WithCause(err)
}

// NewStoreWriteError creates a bad gateway error for failed table writes
func NewStoreWriteError(err error) *AppError {
	return newAppError(ErrorTypeDatabase, http.StatusBadGateway, MessageStoreWrite).WithCause(err)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return IsType(err, ErrorTypeUnauthorized)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	return IsType(err, ErrorTypeForbidden)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsVersionConflict checks if an error is a lost-update conflict
func IsVersionConflict(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == CodeVersionConflict
}

// IsStoreError checks if an error is an upstream store failure
func IsStoreError(err error) bool {
	return IsType(err, ErrorTypeDatabase)
}
