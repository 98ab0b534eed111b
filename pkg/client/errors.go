package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrMalformedResponse is returned when the response body is not a valid
	// Distance Matrix document.
	ErrMalformedResponse = errors.New("malformed distance matrix response")

	// ErrQuotaBlocked is returned when a quota cooldown is active.
	ErrQuotaBlocked = errors.New("request blocked: quota cooldown active")
)

// UpstreamError represents a transport-level failure talking to the
// Distance Matrix service.
type UpstreamError struct {
	StatusCode int
	Class      ErrorClass

	// Body is the response body for non-2xx responses.
	Body []byte

	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("distance matrix %s error (status %d): %v",
			e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("distance matrix %s error (status %d)",
		e.Class, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx errors will fail the same way again
		return false
	case ErrorClassServer:
		return true
	case ErrorClassRateLimit:
		return true
	case ErrorClassNetwork:
		return true
	default:
		return false
	}
}
