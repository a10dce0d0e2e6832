package llm

import (
	"fmt"
	"time"
)

// RateLimitError maps HTTP 429. RetryAfter comes from the Retry-After
// response header, or the caller's default when absent.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// UnauthorizedError maps HTTP 401.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: session expired"
}

// UnavailableError maps HTTP 503.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "service unavailable"
}

// ServerError is any other non-2xx response. Message carries the
// server-supplied error string when one was present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// ParseRetryAfter converts a Retry-After header value (seconds) into a
// duration, falling back to def when missing or unparsable.
func ParseRetryAfter(header string, def time.Duration) time.Duration {
	if header == "" {
		return def
	}
	var secs int
	if _, err := fmt.Sscanf(header, "%d", &secs); err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}
