// Package clients provides the resilient HTTP client used for downstream services.
package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// Client errors are infrastructure failures. Adapters translate them into
// domain errors before they reach the application layer.
var (
	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrRateLimited is returned when the local rate limiter cannot admit
	// the request before the context ends.
	ErrRateLimited = errors.New("rate limited")
)

// StatusError records a retryable HTTP status that exhausted all attempts.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
