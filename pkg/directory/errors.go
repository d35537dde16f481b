package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable indicates the directory call failed or timed out.
	ErrUpstreamUnavailable = errors.New("user directory unavailable")

	// ErrUnauthenticated indicates the session is missing or rejected by the directory.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UpstreamError carries the failed directory operation and, when a response
// arrived, its status code and body.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: directory responded %d: %s", e.Op, e.StatusCode, e.Body)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}

	return []error{ErrUpstreamUnavailable, e.Err}
}

// IsUpstreamUnavailable checks if an error came from a failed directory call.
func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
