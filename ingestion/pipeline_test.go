package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/ai/mock"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
	"github.com/poiesic/energuide/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func providerWith(embedder *mock.MockEmbedder) ai.AIProvider {
	return mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator(""))
}

func newTestPipeline(t *testing.T, repo storage.DocumentRepository, embedder *mock.MockEmbedder, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(repo, providerWith(embedder), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func sampleEntries(n int) []FAQEntry {
	entries := make([]FAQEntry, n)
	for i := range entries {
		entries[i] = FAQEntry{
			ArticleID: fmt.Sprintf("article_%d", i+1),
			Title:     fmt.Sprintf("질문 %d", i+1),
			Content:   fmt.Sprintf("신재생에너지 지원 제도 안내 %d번 답변입니다.", i+1),
			URL:       fmt.Sprintf("https://www.knrec.or.kr/faq/%d", i+1),
		}
	}
	return entries
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func TestEmbeddingProcessor_Process(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}, {0, 2}}, nil
	})

	ep, err := newEmbeddingProcessor(embedder, nil)
	require.NoError(t, err)

	docs := []*core.Document{{Content: "first"}, {Content: "second"}}
	require.NoError(t, ep.process(context.Background(), docs))

	assert.InDeltaSlice(t, []float32{0.6, 0.8}, docs[0].Vector, 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1}, docs[1].Vector, 1e-6)
}

func TestEmbeddingProcessor_Process_Errors(t *testing.T) {
	t.Run("embedder error", func(t *testing.T) {
		embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedder error")
		})
		ep, err := newEmbeddingProcessor(embedder, nil)
		require.NoError(t, err)

		err = ep.process(context.Background(), []*core.Document{{Content: "x"}})
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
		assert.Contains(t, err.Error(), "embedder error")
	})

	t.Run("count mismatch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		})
		ep, err := newEmbeddingProcessor(embedder, nil)
		require.NoError(t, err)

		err = ep.process(context.Background(), []*core.Document{{Content: "x"}, {Content: "y"}})
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
	})

	t.Run("nothing to do", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		ep, err := newEmbeddingProcessor(embedder, nil)
		require.NoError(t, err)

		require.NoError(t, ep.process(context.Background(), nil))
		assert.Zero(t, embedder.CallCount())
	})
}

func TestNewPipeline(t *testing.T) {
	repo := setupTestRepository(t)
	provider := providerWith(mock.NewMockEmbedder())

	t.Run("valid pipeline", func(t *testing.T) {
		pipeline, err := NewPipeline(repo, provider)
		require.NoError(t, err)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.embeddingPool)
		assert.Equal(t, DefaultChunkSize, pipeline.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, pipeline.chunkOverlap)
		assert.Equal(t, DefaultBatchSize, pipeline.batchSize)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestPipeline_WithOptions(t *testing.T) {
	repo := setupTestRepository(t)
	provider := providerWith(mock.NewMockEmbedder())

	t.Run("valid options", func(t *testing.T) {
		pipeline, err := NewPipeline(repo, provider,
			WithPoolSize(4),
			WithChunking(300, 50),
			WithBatchSize(8),
			WithReplaceExisting(true),
			WithLogger(slog.Default()),
		)
		require.NoError(t, err)
		defer pipeline.Release()

		assert.Equal(t, 300, pipeline.chunkSize)
		assert.Equal(t, 50, pipeline.chunkOverlap)
		assert.Equal(t, 8, pipeline.batchSize)
		assert.True(t, pipeline.replaceExisting)
	})

	t.Run("pool size zero defaults to 1", func(t *testing.T) {
		pipeline, err := NewPipeline(repo, provider, WithPoolSize(0))
		require.NoError(t, err)
		defer pipeline.Release()
		assert.Equal(t, 1, pipeline.embeddingPool.Cap())
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		pipeline, err := NewPipeline(repo, provider, WithLogger(nil))
		require.NoError(t, err)
		defer pipeline.Release()
		assert.NotNil(t, pipeline.logger)
	})

	t.Run("invalid chunking", func(t *testing.T) {
		for _, tc := range [][2]int{{0, 0}, {100, 100}, {100, -1}} {
			_, err := NewPipeline(repo, provider, WithChunking(tc[0], tc[1]))
			assert.ErrorIs(t, err, ErrInvalidChunking)
		}
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewPipeline(repo, provider, WithBatchSize(0))
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestPipeline_Ingest(t *testing.T) {
	repo := setupTestRepository(t)
	embedder := mock.NewMockEmbedder()
	pipeline := newTestPipeline(t, repo, embedder)
	ctx := context.Background()

	report, err := pipeline.Ingest(ctx, sampleEntries(3))
	require.NoError(t, err)
	assert.Equal(t, IngestReport{Entries: 3, Chunks: 3, Added: 3}, report)

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	docs, err := repo.ListDocuments(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for _, doc := range docs {
		assert.InDelta(t, 1.0, vectorNorm(doc.Vector), 1e-5)
		assert.Equal(t, DefaultSource, doc.Meta(core.MetaSource))
		assert.Equal(t, "0", doc.Meta(core.MetaChunk))
		assert.NotEmpty(t, doc.Meta(core.MetaURL))
	}

	t.Run("second run skips indexed chunks", func(t *testing.T) {
		calls := embedder.CallCount()

		report, err := pipeline.Ingest(ctx, sampleEntries(3))
		require.NoError(t, err)
		assert.Equal(t, IngestReport{Entries: 3, Chunks: 3, Skipped: 3}, report)
		assert.Equal(t, calls, embedder.CallCount())

		count, err := repo.CountDocuments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestPipeline_Ingest_DuplicatesWithinRun(t *testing.T) {
	repo := setupTestRepository(t)
	pipeline := newTestPipeline(t, repo, mock.NewMockEmbedder())

	entries := sampleEntries(2)
	entries = append(entries, entries[0])

	report, err := pipeline.Ingest(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, IngestReport{Entries: 3, Chunks: 3, Added: 2, Skipped: 1}, report)
}

func TestPipeline_Ingest_EmptyEntries(t *testing.T) {
	repo := setupTestRepository(t)
	pipeline := newTestPipeline(t, repo, mock.NewMockEmbedder())

	report, err := pipeline.Ingest(context.Background(), []FAQEntry{{ArticleID: "blank"}})
	require.NoError(t, err)
	assert.Equal(t, IngestReport{Entries: 1}, report)
}

func TestPipeline_Ingest_Batches(t *testing.T) {
	repo := setupTestRepository(t)
	embedder := mock.NewMockEmbedder()
	pipeline := newTestPipeline(t, repo, embedder, WithBatchSize(2), WithPoolSize(2))

	report, err := pipeline.Ingest(context.Background(), sampleEntries(5))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Added)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestPipeline_Ingest_ReplaceExisting(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	first := newTestPipeline(t, repo, mock.NewMockEmbedder())
	_, err := first.Ingest(ctx, sampleEntries(1))
	require.NoError(t, err)

	refreshed := sampleEntries(2)
	refreshed[0].URL = "https://www.knrec.or.kr/faq/moved"

	replacing := newTestPipeline(t, repo, mock.NewMockEmbedder(), WithReplaceExisting(true))
	report, err := replacing.Ingest(ctx, refreshed)
	require.NoError(t, err)
	assert.Equal(t, IngestReport{Entries: 2, Chunks: 2, Added: 1, Updated: 1}, report)

	doc, err := repo.FindByContent(ctx, core.ContentHash(refreshed[0].Text()))
	require.NoError(t, err)
	assert.Equal(t, "https://www.knrec.or.kr/faq/moved", doc.Meta(core.MetaURL))

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPipeline_Ingest_EmbeddingFailureStoresNothing(t *testing.T) {
	repo := setupTestRepository(t)
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("rate limited")
	})
	pipeline := newTestPipeline(t, repo, embedder, WithBatchSize(1))

	_, err := pipeline.Ingest(context.Background(), sampleEntries(3))
	assert.ErrorIs(t, err, ErrEmbeddingFailed)

	count, err := repo.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPipeline_Release(t *testing.T) {
	repo := setupTestRepository(t)
	pipeline, err := NewPipeline(repo, providerWith(mock.NewMockEmbedder()))
	require.NoError(t, err)

	pipeline.Release()
	assert.True(t, pipeline.embeddingPool.IsClosed())

	// Release is idempotent
	pipeline.Release()
}
