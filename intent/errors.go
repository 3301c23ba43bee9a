package intent

import "errors"

var (
	// ErrUnknownIntent is returned when parsing an unrecognized intent label.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrInvalidWeight is returned for non-positive keyword weights.
	ErrInvalidWeight = errors.New("keyword weight must be positive")

	// ErrInvalidThreshold is returned for negative classifier thresholds.
	ErrInvalidThreshold = errors.New("threshold must not be negative")
)
