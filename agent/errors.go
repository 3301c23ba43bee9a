package agent

import "errors"

var (
	// ErrRetrieverRequired is returned when no retriever is provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrClassifierRequired is returned when a nil classifier is provided.
	ErrClassifierRequired = errors.New("classifier required")

	// ErrInvalidWindow is returned for a conversation window below 2 turns.
	ErrInvalidWindow = errors.New("conversation window must hold at least 2 turns")
)
