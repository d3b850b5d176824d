package vision

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("vision: transport failure")

	// ErrMalformedResponse is returned when a 2xx reply has no completion.
	ErrMalformedResponse = errors.New("vision: malformed response")

	// ErrEmptyImage is returned when Analyze is called without image data.
	ErrEmptyImage = errors.New("vision: empty image")

	// ErrNoEndpoint is returned when the client has no endpoint configured.
	ErrNoEndpoint = errors.New("vision: endpoint required")
)

// TransportError reports a non-success HTTP status or a failed round trip.
type TransportError struct {
	// StatusCode is zero when the request never got a response.
	StatusCode int

	// Body is the response body, kept for diagnostics.
	Body string

	// Err is the underlying network error, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("vision: request failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("vision: HTTP %d: %s", e.StatusCode, truncate(e.Body, 200))
	}
	return fmt.Sprintf("vision: HTTP %d", e.StatusCode)
}

// Unwrap returns the network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransport) true for any TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsServerError returns true for HTTP 5xx.
func (e *TransportError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRateLimited returns true for HTTP 429.
func (e *TransportError) IsRateLimited() bool {
	return e.StatusCode == 429
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
