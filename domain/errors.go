package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrProfileNotFound      = NewError(ErrCodeNotFound, "profile not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrClientNotFound       = NewError(ErrCodeNotFound, "client not found")
	ErrVehicleNotFound      = NewError(ErrCodeNotFound, "vehicle not found")
	ErrNotificationNotFound = NewError(ErrCodeNotFound, "notifications not found")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden            = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
	ErrStoreUnavailable     = NewError(ErrCodeUnavailable, "store unavailable")
	ErrCacheMiss            = NewError(ErrCodeNotFound, "cache miss")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return code == ErrCodeInvalid
	}
	return false
}

// ValidationError reports per-field problems found in a request or checklist submission.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError returns a ValidationError, or nil when fields is empty.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	if len(parts) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}
