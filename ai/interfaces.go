package ai

import "context"

// Embedder generates vector embeddings for text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Prompt is the structured input to answer generation.
type Prompt struct {
	// History is the pre-formatted transcript of prior turns. May be empty.
	History string
	// Context is the block of cleaned retrieved passages.
	Context string
	// Question is the user's (possibly rewritten) question.
	Question string
}

// Generator writes a free-text answer for a structured prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Name identifies the backend, e.g. "openai:text-embedding-3-small".
	Name() string

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the answer generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
