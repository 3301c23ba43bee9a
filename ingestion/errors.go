package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidFAQ is returned when FAQ data cannot be decoded.
	ErrInvalidFAQ = errors.New("invalid FAQ data")

	// ErrInvalidChunking is returned for a non-positive chunk size or an
	// overlap outside [0, size).
	ErrInvalidChunking = errors.New("invalid chunk size or overlap")

	// ErrInvalidBatchSize is returned for a non-positive batch size.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrEmbeddingFailed is returned when a batch cannot be embedded.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
