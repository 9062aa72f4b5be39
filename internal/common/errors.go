package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for the request pipeline. Handlers map these to HTTP
// status codes; everything wrapping one of them is classified by errors.Is.
var (
	ErrNoFileProvided    = errors.New("no file provided")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrProviderAuth      = errors.New("provider authentication failed")
	ErrProviderRequest   = errors.New("provider request failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
)

// NewAppError builds an AppError with a stable code.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
