package inoreader

import (
	"fmt"
	"time"
)

// AuthError means the upstream rejected our credentials or session. It is not
// retried automatically beyond the single re-authentication attempt.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Reason)
	}
	return "authentication failed: " + e.Reason
}

// ValidationError means a request was rejected locally before any network
// call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TimeoutError means the upstream did not respond within the configured
// timeout.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream did not respond within %s", e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// UpstreamError covers non-2xx responses and malformed bodies. Status is zero
// when the request never produced a response.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("upstream request failed: %d - %s", e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("upstream request failed: %d", e.Status)
	case e.Err != nil:
		return "upstream request failed: " + e.Err.Error()
	}
	return "upstream request failed"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotFoundError means the referenced article does not exist upstream.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("article %q not found", e.ID)
}
