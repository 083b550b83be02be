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
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Message is safe to show to clients;
// Err carries the underlying cause and is only ever logged.
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
	ErrKeyNotFound     = NewError(ErrCodeNotFound, "key not found")
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrAccountNotFound = NewError(ErrCodeNotFound, "account not found")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
	ErrUnknownRole     = NewError(ErrCodeInvalid, "unknown role")
	ErrWeakPassword    = NewError(ErrCodeInvalid, "password must be at least 8 characters")
	ErrLongPassword    = NewError(ErrCodeInvalid, "password must be at most 72 bytes")
	ErrUsernameTaken   = NewError(ErrCodeConflict, "username already exists")
	ErrAccountExists   = NewError(ErrCodeConflict, "account already exists")

	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "Invalid credentials")

	// Session validation outcomes. The messages are part of the wire contract.
	ErrNoSessionProvided = NewError(ErrCodeUnauthorized, "No session provided")
	ErrSessionNotFound   = NewError(ErrCodeUnauthorized, "Invalid session")
	ErrSessionMalformed  = NewError(ErrCodeUnauthorized, "Invalid session")
	ErrSessionExpired    = NewError(ErrCodeUnauthorized, "Session expired")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// StoreUnavailable classifies an unexpected key-value store failure.
func StoreUnavailable(err error) *Error {
	return WrapError(ErrCodeUnavailable, "store unavailable", err)
}
