package platformerrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error surfaced to callers.
type ErrorType string

const (
	ErrorTypeUnauthenticated  ErrorType = "UNAUTHENTICATED"
	ErrorTypeRateLimited      ErrorType = "RATE_LIMITED"
	ErrorTypeTemplateNotFound ErrorType = "TEMPLATE_NOT_FOUND"
	ErrorTypeInvalidPayload   ErrorType = "INVALID_PAYLOAD"
	ErrorTypePersistence      ErrorType = "PERSISTENCE_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeInternal         ErrorType = "INTERNAL"
)

// Layer represents the application layer where the error occurred.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError carries a typed error code plus layer context through the stack.
type PlatformError struct {
	Type      ErrorType
	Message   string
	Err       error
	Layer     Layer
	Timestamp time.Time

	// RetryAfter is populated for RATE_LIMITED errors so handlers can emit
	// a Retry-After header.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewError creates a new PlatformError.
func NewError(layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		Type:      errorType,
		Message:   message,
		Err:       err,
		Layer:     layer,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimited creates a RATE_LIMITED error carrying a retry hint.
func NewRateLimited(layer Layer, message string, retryAfter time.Duration) *PlatformError {
	e := NewError(layer, ErrorTypeRateLimited, message, nil)
	e.RetryAfter = retryAfter
	return e
}

// GetPlatformError extracts a PlatformError from an error chain, or nil.
func GetPlatformError(err error) *PlatformError {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}
	return nil
}

// IsErrorType reports whether err wraps a PlatformError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	platformErr := GetPlatformError(err)
	return platformErr != nil && platformErr.Type == errorType
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	case ErrorTypeTemplateNotFound, ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeInvalidPayload:
		return http.StatusBadRequest
	case ErrorTypePersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
