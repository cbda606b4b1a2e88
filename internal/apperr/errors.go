package apperr

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeNoImage        ErrorType = "no_image"
	ErrorTypeDecode         ErrorType = "decode"
	ErrorTypeMatteGenerator ErrorType = "matte_generator"
	ErrorTypeEncode         ErrorType = "encode"
	ErrorTypeIO             ErrorType = "io"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
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

// Is reports type equality so errors.Is(err, ErrNoImage) matches any
// no_image error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == ""
}

// ErrNoImage is returned by every operation that needs a loaded baseline.
var ErrNoImage = &AppError{Type: ErrorTypeNoImage}

// NewNoImageError creates a no-image error for the named operation.
func NewNoImageError(op string) *AppError {
	return &AppError{
		Type:    ErrorTypeNoImage,
		Message: fmt.Sprintf("%s: no image loaded", op),
	}
}

// NewDecodeError creates a new decode error
func NewDecodeError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDecode,
		Message: message,
		Cause:   cause,
	}
}

// NewMatteGeneratorError creates a new matte generator error
func NewMatteGeneratorError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeMatteGenerator,
		Message: message,
		Cause:   cause,
	}
}

// NewEncodeError creates a new encode error
func NewEncodeError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeEncode,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates a new I/O error
func NewIOError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if any error in the chain is an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}
