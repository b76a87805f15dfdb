package config

import "errors"

// Sentinel errors for the config package.
var (
	// ErrLoad is returned when a configuration source cannot be read or parsed.
	ErrLoad = errors.New("config: load failed")
)
