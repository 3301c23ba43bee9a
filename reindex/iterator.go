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


package reindex

import (
	"context"

	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
)

// DefaultBatchSize is the default number of documents fetched per page.
const DefaultBatchSize = 100

// DocumentIterator pages through every stored document in ID order.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// A non-positive batchSize selects DefaultBatchSize.
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive pages of documents until the index is
// exhausted, fn fails or ctx is done.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := it.repo.ListDocuments(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		after = page[len(page)-1].Id

		if err := fn(page); err != nil {
			return err
		}
		if len(page) < it.batchSize {
			return nil
		}
	}
}
