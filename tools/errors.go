package tools

import "errors"

// ErrInvalidCapacity is returned for a non-positive system capacity.
var ErrInvalidCapacity = errors.New("capacity must be positive")
