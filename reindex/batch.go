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
	"fmt"

	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
)

// BatchProcessor re-embeds batches of stored documents.
type BatchProcessor struct {
	repo     storage.DocumentRepository
	embedder ai.Embedder
	retry    RetryPolicy
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(repo storage.DocumentRepository, embedder ai.Embedder, retry RetryPolicy) *BatchProcessor {
	return &BatchProcessor{
		repo:     repo,
		embedder: embedder,
		retry:    retry,
	}
}

// Process embeds the documents' content, stores unit-length vectors and
// writes the documents back.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	var embeddings [][]float32
	err := Retry(ctx, bp.retry, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.retry.MaxAttempts, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(docs), len(embeddings))
	}

	for i := range docs {
		docs[i].Vector = core.NormalizeVector(embeddings[i])
	}

	if _, err := bp.repo.UpdateDocuments(ctx, docs...); err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}
	return nil
}
