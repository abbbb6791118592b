package bookingapi

import (
	"errors"
	"fmt"
)

// ErrConflict marks a request the backend rejected because record state
// changed concurrently (e.g. another sitter accepted first). It is still an
// ordinary per-record failure for the fan-out; no compensation is attempted.
var ErrConflict = errors.New("booking state changed concurrently")

// Transport-level failures reaching the backend. Callers treat both as the
// backend being unavailable rather than any statement about record state.
var (
	ErrUpstreamTimeout     = errors.New("booking api timeout")
	ErrUpstreamUnreachable = errors.New("booking api unreachable")
)

// APIError is a structured non-2xx reply from the legacy backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking api error: status=%d message=%s", e.Status, e.Message)
}

// IsConflict reports whether err is a concurrent-modification rejection.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
