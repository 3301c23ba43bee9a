package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/core"
)

// embeddingProcessor attaches unit-length embeddings to documents.
type embeddingProcessor struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

func (ep *embeddingProcessor) process(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	ep.logger.Debug("generating embeddings", "documents", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: expected %d embeddings, received %d", ErrEmbeddingFailed, len(docs), len(embeddings))
	}

	for i := range embeddings {
		docs[i].Vector = core.NormalizeVector(embeddings[i])
	}
	return nil
}
