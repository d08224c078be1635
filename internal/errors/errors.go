package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeGeneration        ErrorType = "GENERATION"
	ErrTypeInsufficientData  ErrorType = "INSUFFICIENT_DATA"
	ErrTypeInvalidParameter  ErrorType = "INVALID_PARAMETER"
	ErrTypeUnsupportedMethod ErrorType = "UNSUPPORTED_METHOD"
	ErrTypeValidation        ErrorType = "VALIDATION"
	ErrTypeStorage           ErrorType = "STORAGE"
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeConfig            ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewGenerationError creates a dataset generation error. At the fixed
// generation parameters this is never expected to occur and is treated
// as fatal by callers.
func NewGenerationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeGeneration, message, cause)
}

// NewInsufficientDataError creates an error for analyses that need more
// observations than the dataset provides
func NewInsufficientDataError(message string) *AppError {
	return NewAppError(ErrTypeInsufficientData, message, nil)
}

// NewInvalidParameterError creates an error for a caller-supplied
// parameter outside its valid range
func NewInvalidParameterError(message string) *AppError {
	return NewAppError(ErrTypeInvalidParameter, message, nil)
}

// NewUnsupportedMethodError creates an error for a method name outside
// the supported set
func NewUnsupportedMethodError(method string) *AppError {
	return NewAppError(ErrTypeUnsupportedMethod, fmt.Sprintf("unsupported method %q", method), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is an AppError of the given type anywhere
// in its chain
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsCallerInputError reports whether err is one of the adapter input
// errors. The pipeline logs these and continues with that adapter's
// output omitted rather than aborting the run.
func IsCallerInputError(err error) bool {
	return IsType(err, ErrTypeInsufficientData) ||
		IsType(err, ErrTypeInvalidParameter) ||
		IsType(err, ErrTypeUnsupportedMethod)
}
