package health

import "errors"

// Sentinel errors for the health package.
var (
	// ErrCheckFailed is returned by Response.Err when one or more checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout replaces the error of a check that exceeded the timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
