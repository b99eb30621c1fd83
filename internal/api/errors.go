package api

import (
	"fmt"
	"time"
)

// NetworkError wraps a transport-level failure (DNS, connect, TLS, timeout).
// Requests that fail this way are never retried automatically.
type NetworkError struct {
	// Err is the underlying transport error.
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the API, excluding 429.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Body is the raw response body, kept for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, truncate(e.Body, 200))
}

// RateLimitedError is a 429 response. The request is not retried; callers
// decide whether to wait for ResetAt.
type RateLimitedError struct {
	// ResetAt is when the rate-limit window resets, parsed from the
	// x-rate-limit-reset header (now, if the header was absent).
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResetAt.Format(time.RFC3339))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
