package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	ErrCodeBadRequest   ErrorCode = "bad_request"
	ErrCodeNotFound     ErrorCode = "not_found"
	ErrCodeUnauthorized ErrorCode = "unauthorized"

	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeServiceError  ErrorCode = "service_error"
)

// APIError is the error body returned by the ops server
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Status returns the HTTP status matching the error code
func (e *APIError) Status() int {
	switch e.Code {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(code ErrorCode, message string, details []string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewBadRequestError(message string, details ...string) *APIError {
	return newError(ErrCodeBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *APIError {
	return newError(ErrCodeNotFound, message, details)
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return newError(ErrCodeUnauthorized, message, details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newError(ErrCodeInternalError, message, details)
}

// NewServiceError reports a failure of the upstream marketplace
func NewServiceError(message string, details ...string) *APIError {
	return newError(ErrCodeServiceError, message, details)
}
