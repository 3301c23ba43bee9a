// Package reindex rebuilds the vectors of every stored document with the
// current embedder.
//
// Documents are paged in ID order, embedded in batches with exponential
// backoff on failure and written back with unit-length vectors.
package reindex
