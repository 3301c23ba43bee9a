// Package ingestion loads crawled FAQ data into the document index.
//
// The Pipeline type manages the ingestion workflow:
//   - Splitting each entry into overlapping chunks
//   - Skipping chunks whose content is already indexed
//   - Embedding batches concurrently on a worker pool
//   - Storing the chunks with unit-length vectors
//
// Ingest blocks until every batch is stored and reports what it did.
package ingestion
