package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/energuide/ai/mock"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
	"github.com/poiesic/energuide/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T, n int) storage.DocumentRepository {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	if n > 0 {
		docs := make([]*core.Document, n)
		for i := range docs {
			docs[i] = &core.Document{
				Content: fmt.Sprintf("신재생에너지 안내 문서 %d", i),
				Vector:  []float32{1, 0},
			}
		}
		_, err = repo.AddDocuments(context.Background(), docs...)
		require.NoError(t, err)
	}
	return repo
}

func testConfig(batchSize int) *Config {
	return &Config{
		BatchSize:      batchSize,
		ReportInterval: batchSize,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func TestDocumentIterator_Pages(t *testing.T) {
	repo := setupTestRepository(t, 7)

	var sizes []int
	var ids []core.ID
	err := NewDocumentIterator(repo, 3).ForEach(context.Background(), func(docs []*core.Document) error {
		sizes = append(sizes, len(docs))
		for _, d := range docs {
			ids = append(ids, d.Id)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestDocumentIterator_StopsOnError(t *testing.T) {
	repo := setupTestRepository(t, 7)
	stop := errors.New("stop")

	calls := 0
	err := NewDocumentIterator(repo, 3).ForEach(context.Background(), func(docs []*core.Document) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestDocumentIterator_DefaultBatchSize(t *testing.T) {
	it := NewDocumentIterator(setupTestRepository(t, 0), 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestRepository(t, 2)
	ctx := context.Background()

	docs, err := repo.ListDocuments(ctx, 0, 10)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{0, 3, 4}, {2, 0, 0}}, nil
	})
	bp := NewBatchProcessor(repo, embedder, fastPolicy(1))
	require.NoError(t, bp.Process(ctx, docs))

	stored, err := repo.GetDocument(ctx, docs[0].Id)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0.6, 0.8}, stored.Vector, 1e-6)
}

func TestBatchProcessor_RetriesTransientFailures(t *testing.T) {
	repo := setupTestRepository(t, 1)
	ctx := context.Background()
	docs, err := repo.ListDocuments(ctx, 0, 10)
	require.NoError(t, err)

	var attempts atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("rate limited")
		}
		return [][]float32{{1, 1}}, nil
	})

	bp := NewBatchProcessor(repo, embedder, fastPolicy(3))
	require.NoError(t, bp.Process(ctx, docs))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestBatchProcessor_Mismatch(t *testing.T) {
	repo := setupTestRepository(t, 2)
	ctx := context.Background()
	docs, err := repo.ListDocuments(ctx, 0, 10)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	err = NewBatchProcessor(repo, embedder, fastPolicy(1)).Process(ctx, docs)
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestReindexer_Run(t *testing.T) {
	repo := setupTestRepository(t, 10)
	ctx := context.Background()

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	report, err := NewReindexer(repo, embedder, testConfig(3), &buf).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Documents)
	assert.Equal(t, 4, embedder.CallCount())

	docs, err := repo.ListDocuments(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, docs, 10)
	for _, doc := range docs {
		assert.InDeltaSlice(t, mock.DeterministicVector(doc.Content, 384), doc.Vector, 1e-6)
		assert.InDelta(t, 1.0, norm(doc.Vector), 1e-5)
	}

	assert.Contains(t, buf.String(), "Re-embedding 10 documents")
	assert.Contains(t, buf.String(), "10/10")
}

func TestReindexer_Run_Concurrent(t *testing.T) {
	repo := setupTestRepository(t, 10)
	ctx := context.Background()

	cfg := testConfig(3)
	cfg.Workers = 4
	embedder := mock.NewMockEmbedder()
	report, err := NewReindexer(repo, embedder, cfg, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Documents)
	assert.Equal(t, 4, embedder.CallCount())

	docs, err := repo.ListDocuments(ctx, 0, 100)
	require.NoError(t, err)
	for _, doc := range docs {
		assert.InDeltaSlice(t, mock.DeterministicVector(doc.Content, 384), doc.Vector, 1e-6)
	}
}

func TestReindexer_EmptyIndex(t *testing.T) {
	repo := setupTestRepository(t, 0)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	report, err := NewReindexer(repo, embedder, nil, &buf).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Documents)
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, buf.String(), "No documents")
}

func TestReindexer_FailureKeepsFinishedBatches(t *testing.T) {
	repo := setupTestRepository(t, 5)
	ctx := context.Background()

	var calls atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) > 1 {
			return nil, errors.New("model unavailable")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{0, 1}
		}
		return out, nil
	})

	cfg := testConfig(2)
	cfg.MaxRetries = 1
	report, err := NewReindexer(repo, embedder, cfg, nil).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
	assert.Equal(t, 2, report.Documents)

	docs, err := repo.ListDocuments(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, docs[0].Vector)
	assert.Equal(t, []float32{0, 1}, docs[1].Vector)
	assert.Equal(t, []float32{1, 0}, docs[2].Vector)
}

func TestReindexer_ContextCanceled(t *testing.T) {
	repo := setupTestRepository(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReindexer(repo, mock.NewMockEmbedder(), testConfig(2), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
