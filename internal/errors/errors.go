package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Status  int // HTTP status observed from the backend, 0 when none
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Status:  appErr.Status,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetStatus returns the HTTP status carried by a protocol error, or 0.
func GetStatus(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeDatabaseError  = "DATABASE_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeTransportError = "TRANSPORT_ERROR"
	CodeProtocolError  = "PROTOCOL_ERROR"
	CodeTimeout        = "TIMEOUT"
	CodeDecodeError    = "DECODE_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// Transport reports that the backend could not be reached at all.
func Transport(cause error) *AppError {
	return &AppError{
		Code:    CodeTransportError,
		Message: "backend unreachable",
		Cause:   cause,
	}
}

// Protocol reports a non-2xx HTTP status from the backend.
func Protocol(status int) *AppError {
	return &AppError{
		Code:    CodeProtocolError,
		Message: fmt.Sprintf("backend returned %d: %s", status, http.StatusText(status)),
		Status:  status,
	}
}

// Timeout reports that the request deadline elapsed before the backend answered.
func Timeout(cause error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: "backend request timeout",
		Cause:   cause,
	}
}

// Decode reports a 2xx body that could not be parsed into the expected shape.
func Decode(cause error) *AppError {
	return &AppError{
		Code:    CodeDecodeError,
		Message: "invalid response from backend",
		Cause:   cause,
	}
}
