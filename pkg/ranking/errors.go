package ranking

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is returned when a query fails validation. No request is
// made in that case.
var ErrInvalidQuery = errors.New("invalid ranking query")

// APIError is returned when a response carries a non-OK top-level status.
type APIError struct {
	Status  string
	Message string

	// Payload is the raw response body.
	Payload []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("distance matrix status %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("distance matrix status %s", e.Status)
}

// AlignmentError is returned when the number of elements in a response does
// not match the number of destinations sent.
type AlignmentError struct {
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *AlignmentError) Error() string {
	return fmt.Sprintf("response misaligned: expected %d elements, got %d", e.Expected, e.Got)
}
