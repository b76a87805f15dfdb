package event

import "errors"

// Sentinel errors for the event package.
var (
	// ErrNilListener is returned when subscribing a nil listener.
	ErrNilListener = errors.New("event: nil listener")

	// ErrEmptyName is returned when subscribing to an empty event name.
	ErrEmptyName = errors.New("event: empty event name")
)
