// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// NearestNeighbors delegates to the backend.
func (r *DocumentRepository) NearestNeighbors(ctx context.Context, vector []float32, k int) ([]core.Neighbor, error) {
	return r.backend.NearestNeighbors(ctx, vector, k)
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			doc.Id = core.ID(nextID)
			doc.ContentHash = core.ContentHash(doc.Content)
			doc.InsertedAt = time.Now().UTC()
			doc.UpdatedAt = doc.InsertedAt

			if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
				return err
			}
			if err := tx.Set(makeDocumentHashKey(doc.ContentHash), storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// UpdateDocuments replaces existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			doc.ContentHash = core.ContentHash(doc.Content)
			doc.InsertedAt = old.InsertedAt
			doc.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}

			// Move the hash index entry if the content changed
			if old.ContentHash != doc.ContentHash {
				if err := deleteHashIndex(tx, old); err != nil {
					return err
				}
				if err := tx.Set(makeDocumentHashKey(doc.ContentHash), storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if err := deleteHashIndex(tx, doc); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	results := make([]*core.Document, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// ListDocuments returns up to limit documents with IDs greater than after.
func (r *DocumentRepository) ListDocuments(ctx context.Context, after core.ID, limit int) ([]*core.Document, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeDocumentKey(after)); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if idFromDocumentKey(item.Key()) <= after {
				continue
			}

			var doc *core.Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, doc)
			if len(results) >= limit {
				break
			}
		}
		return nil
	}, false)
	return results, err
}

// HasContent reports whether a document with the given content hash exists.
func (r *DocumentRepository) HasContent(ctx context.Context, hash core.ID) (bool, error) {
	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeDocumentHashKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// FindByContent follows the content hash index to its document.
func (r *DocumentRepository) FindByContent(ctx context.Context, hash core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentHashKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var id core.ID
		err = item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// CountDocuments returns the number of stored documents.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes every document and the content hash index.
// The ID sequence keeps counting so IDs are never reused.
func (r *DocumentRepository) Clear(ctx context.Context) error {
	return r.backend.DropPrefix([]byte(documentPrefix), []byte(documentHashPrefix))
}

// readDocument reads a document from the database.
// Returns (nil, nil) if the document doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}

// deleteHashIndex removes the hash index entry only if it still points at doc.
func deleteHashIndex(tx *badger.Txn, doc *core.Document) error {
	hashKey := makeDocumentHashKey(doc.ContentHash)
	item, err := tx.Get(hashKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var owner core.ID
	err = item.Value(func(val []byte) error {
		var err error
		owner, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return err
	}
	if owner != doc.Id {
		return nil
	}
	return tx.Delete(hashKey)
}
