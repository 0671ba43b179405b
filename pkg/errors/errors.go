package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeStatus    ErrorType = "status"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeAPI       ErrorType = "api"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a failed call against the Pixiv API with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// IsRetryable checks if an error type should be retried. ErrorTypeAPI marks
// a well-formed body carrying Pixiv's error flag and is final.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeStatus, ErrorTypeRateLimit, ErrorTypeNotFound, ErrorTypeParsing:
		return true
	case ErrorTypeAPI:
		return false
	default:
		return false
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// StatusType maps a non-2xx HTTP status code to an ErrorType
func StatusType(statusCode int) ErrorType {
	switch statusCode {
	case 404:
		return ErrorTypeNotFound
	case 429:
		return ErrorTypeRateLimit
	default:
		return ErrorTypeStatus
	}
}
