// Package errors provides standardized error handling for the recommendation pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamBadResponse ErrorCode = "UPSTREAM_BAD_RESPONSE"
	ErrCodeRequestTimeout      ErrorCode = "REQUEST_TIMEOUT"

	// ErrCodeEnrichmentFailed is absorbed at the enricher boundary and is never
	// surfaced as a request-level error.
	ErrCodeEnrichmentFailed ErrorCode = "ENRICHMENT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewBadRequestError creates a non-retryable client input error.
func NewBadRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBadRequest,
		Message:   "Invalid request parameters",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates a retryable connectivity error for a dependency.
func NewUpstreamUnavailableError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   fmt.Sprintf("Upstream service '%s' unavailable", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamBadResponseError creates a non-retryable malformed payload error.
func NewUpstreamBadResponseError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamBadResponse,
		Message:   fmt.Sprintf("Upstream service '%s' returned an unexpected payload", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestTimeoutError creates a retryable request deadline error.
func NewRequestTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestTimeout,
		Message:   "Request exceeded its deadline",
		Details:   "enrichment fan-out did not settle before the per-request timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentFailedError creates an error scoped to a single candidate.
func NewEnrichmentFailedError(placeID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   "Candidate enrichment failed",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"placeId": placeID},
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code, falling back to UPSTREAM_UNAVAILABLE for
// unclassified errors so callers always get a mappable code.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeUpstreamUnavailable
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeRequestTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamBadResponse:
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the caller may retry the failed request.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
