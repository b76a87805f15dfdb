package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// TimeoutError represents a request timeout.
// The default exception decorator renders it as 503 Service Unavailable.
type TimeoutError struct {
	Duration time.Duration // The timeout that was exceeded
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// StatusCode reports the HTTP status for the timeout.
func (e *TimeoutError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
