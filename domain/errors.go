package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeDuplicate    ErrorCode = "DUPLICATE"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Details carries structured context
// (e.g. the blocking tasks of a refused streak toggle) for precise client
// messages.
type Error struct {
	Code    ErrorCode
	Message string
	Details interface{}
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

// WithDetails attaches structured detail to a copy of the error.
func (e *Error) WithDetails(details interface{}) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = details
	return &clone
}

// Common domain errors. A row that exists but belongs to another user is
// reported exactly like a missing one.
var (
	ErrUserNotFound      = NewError(ErrCodeNotFound, "user not found")
	ErrGroupNotFound     = NewError(ErrCodeNotFound, "group not found")
	ErrPinGroupNotFound  = NewError(ErrCodeNotFound, "pin group not found")
	ErrPinNotFound       = NewError(ErrCodeNotFound, "pin not found")
	ErrTaskNotFound      = NewError(ErrCodeNotFound, "task not found")
	ErrTaskLogNotFound   = NewError(ErrCodeNotFound, "task log not found")
	ErrStreakNotFound    = NewError(ErrCodeNotFound, "streak not found")
	ErrStreakLogNotFound = NewError(ErrCodeNotFound, "streak log not found")
	ErrSessionNotFound   = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// DetailsOf extracts the structured details of a domain error, if any.
func DetailsOf(err error) interface{} {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Details
	}
	return nil
}
