package config

import "errors"

var (
	// ErrInvalidConfig is returned when a config file cannot be used.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidLogLevel is returned for an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)
