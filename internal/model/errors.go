package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUpstream           = errors.New("upstream error")
)

// APIError represents a structured error for API responses.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized

	// Upstream response details, populated by NewUpstreamError.
	// UpstreamStatus is the status code Tecopos returned; UpstreamBody is
	// the raw response body so callers can see what the platform
	// complained about.
	UpstreamStatus int    `json:"-"`
	UpstreamBody   string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates a 401 error for login failures:
// bad credentials, missing token, or missing businessId.
func NewAuthenticationError(reason string) *APIError {
	return &APIError{
		Code:       "AUTHENTICATION_ERROR",
		Message:    reason,
		StatusCode: 401,
		Err:        ErrInvalidCredentials,
	}
}

// NewNotAuthenticatedError creates a 403 error for requests naming a user
// with no stored session.
func NewNotAuthenticatedError(userID string) *APIError {
	return &APIError{
		Code:       "NOT_AUTHENTICATED",
		Message:    fmt.Sprintf("usuario %q no autenticado", userID),
		StatusCode: 403,
		Err:        ErrNotAuthenticated,
	}
}

// NewValidationError creates a 400 error for invalid input.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewUpstreamError creates an error for a failed Tecopos call. The
// upstream status code and body are carried so handlers can surface them.
// A zero status (network failure before any response) maps to 502.
func NewUpstreamError(operation string, status int, body string) *APIError {
	statusCode := status
	if statusCode < 400 {
		statusCode = 502
	}
	return &APIError{
		Code:           "UPSTREAM_ERROR",
		Message:        fmt.Sprintf("%s failed", operation),
		StatusCode:     statusCode,
		Err:            fmt.Errorf("%w: status %d: %s", ErrUpstream, status, body),
		UpstreamStatus: status,
		UpstreamBody:   body,
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: 500,
		Err:        err,
	}
}
