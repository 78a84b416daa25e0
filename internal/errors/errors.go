// Package errors provides custom error types for the chat backend client.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidResponse  = errors.New("invalid response format")
	ErrNetwork          = errors.New("network error")
	ErrValidation       = errors.New("validation failed")
)

// ValidationError is raised before any network call when user input is incomplete.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is allows comparison with sentinel errors
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError represents a rejected login or registration.
// Message carries the backend's detail verbatim.
type AuthError struct {
	Message    string
	Endpoint   string
	HTTPStatus int
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// NewAuthErrorWithStatus creates an AuthError tagged with the endpoint and status
func NewAuthErrorWithStatus(status int, endpoint, message string) *AuthError {
	return &AuthError{Message: message, Endpoint: endpoint, HTTPStatus: status}
}

// APIError represents a non-2xx response outside of authentication
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Detail     string // backend "detail" field, if any
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// WithDetail attaches the backend detail message
func (e *APIError) WithDetail(detail string) *APIError {
	e.Detail = detail
	return e
}

// NetworkError represents a failure to reach the backend at all
type NetworkError struct {
	Operation string
	Endpoint  string
	BaseURL   string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s at %s", e.Operation, e.Endpoint)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint, baseURL string, cause error) *NetworkError {
	return &NetworkError{
		Operation: operation,
		Endpoint:  endpoint,
		BaseURL:   baseURL,
		Cause:     cause,
	}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// IsValidationError reports whether err was raised on incomplete input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAuthError reports whether err is an authentication rejection
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsNetworkError reports whether the backend could not be reached
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsParseError reports whether the backend answered with an unexpected body
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// GetHTTPStatus extracts the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.HTTPStatus
	}
	return 0
}

// UserMessage normalizes any error into a message suitable for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		if authErr.Message == "" {
			return "Authentication failed"
		}
		return authErr.Message
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.BaseURL == "" {
			return "Cannot connect to backend. Make sure the server is running"
		}
		return fmt.Sprintf("Cannot connect to backend. Make sure the server is running on %s", netErr.BaseURL)
	}

	if IsTimeoutError(err) {
		return "Request timed out. Try again"
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("Backend error: %d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "An error occurred"
}
