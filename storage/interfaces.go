package storage

import (
	"context"

	"github.com/poiesic/energuide/core"
)

// Repository is the base interface for all storage backends.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorSearcher answers nearest-neighbor queries over stored vectors.
type VectorSearcher interface {
	// NearestNeighbors returns up to k documents closest to vector, ordered by
	// ascending distance (squared Euclidean). Documents without a vector are
	// never returned. Returned documents are copies without vectors.
	NearestNeighbors(ctx context.Context, vector []float32, k int) ([]core.Neighbor, error)
}

// DocumentRepository is the embedding index: passages with their vectors.
type DocumentRepository interface {
	Repository
	VectorSearcher

	// AddDocuments stores new documents.
	// Generates IDs from a sequence, computes ContentHash and sets InsertedAt.
	// Returns the documents with those fields populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments replaces existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments returns up to limit documents with ID greater than after,
	// ordered by ID. Pass 0 to start from the beginning.
	ListDocuments(ctx context.Context, after core.ID, limit int) ([]*core.Document, error)

	// HasContent reports whether a document with the given content hash exists.
	HasContent(ctx context.Context, hash core.ID) (bool, error)

	// FindByContent returns the document indexed under a content hash.
	// Returns ErrNotFound if no document has that content.
	FindByContent(ctx context.Context, hash core.ID) (*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// Clear removes every document.
	Clear(ctx context.Context) error
}
