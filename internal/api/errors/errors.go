package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed broker response
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
	// KindUpstream means the credential issuer (STS) refused or could not be reached.
	KindUpstream ErrorKind = "upstream"
)

// APIError is the JSON body of every failed broker response. The message is sent
// under "error" so browser clients can read it the same way for every route.
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"error"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the error the response was built from, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the kind to a response code. Upstream failures are 500s.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Logged reports whether the error is the server's fault and belongs in the error log.
func (e *APIError) Logged() bool {
	return e.Kind == KindInternal || e.Kind == KindUpstream
}

// NewValidationError creates a validation error with per-field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewUpstreamError reports a failed call to the credential issuer. The issuer's message
// is passed through to the client.
func NewUpstreamError(err error) *APIError {
	return &APIError{
		Kind:    KindUpstream,
		Message: err.Error(),
		cause:   err,
	}
}

// From returns err as an APIError. Anything else becomes a generic internal error
// that still unwraps to err.
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Kind:    KindInternal,
		Message: "Internal server error",
		cause:   err,
	}
}
