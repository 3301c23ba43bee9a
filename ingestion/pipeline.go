package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 32

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Entries int // FAQ entries read
	Chunks  int // chunks produced by splitting
	Added   int // new documents stored
	Updated int // existing documents refreshed (replace mode only)
	Skipped int // chunks already indexed or repeated within the run
}

// Pipeline orchestrates chunking, embedding and storage of FAQ entries.
type Pipeline struct {
	repository      storage.DocumentRepository
	embeddingPool   *ants.Pool
	embeddingProc   processor
	chunkSize       int
	chunkOverlap    int
	batchSize       int
	replaceExisting bool
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithChunking sets the chunk size and overlap, in runes.
// Defaults are 500 and 100.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size <= 0 || overlap < 0 || overlap >= size {
			return fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithReplaceExisting makes chunks already in the index be re-embedded and
// updated in place instead of skipped.
func WithReplaceExisting(replace bool) Option {
	return func(p *Pipeline) error {
		p.replaceExisting = replace
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.DocumentRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:    repository,
		embeddingPool: embeddingPool,
		chunkSize:     DefaultChunkSize,
		chunkOverlap:  DefaultChunkOverlap,
		batchSize:     DefaultBatchSize,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	embeddingProc, err := newEmbeddingProcessor(provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// IngestFile loads path with LoadFAQFile and ingests its entries.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (IngestReport, error) {
	entries, err := LoadFAQFile(path)
	if err != nil {
		return IngestReport{}, err
	}
	return p.Ingest(ctx, entries)
}

// Ingest chunks, embeds and stores entries. Nothing is stored when any
// batch fails to embed.
func (p *Pipeline) Ingest(ctx context.Context, entries []FAQEntry) (IngestReport, error) {
	report := IngestReport{Entries: len(entries)}

	splitter := newChunker(p.chunkSize, p.chunkOverlap)
	var docs []*core.Document
	for _, entry := range entries {
		chunks, err := splitter.split(entry)
		if err != nil {
			return report, fmt.Errorf("splitting article %q: %w", entry.ArticleID, err)
		}
		docs = append(docs, chunks...)
	}
	report.Chunks = len(docs)

	added, updated, err := p.partition(ctx, docs)
	if err != nil {
		return report, err
	}
	report.Skipped = report.Chunks - len(added) - len(updated)
	p.logger.Info("chunked entries", "entries", report.Entries, "chunks", report.Chunks, "skipped", report.Skipped)

	if err := p.embed(ctx, slices.Concat(added, updated)); err != nil {
		return report, err
	}

	if len(added) > 0 {
		stored, err := p.repository.AddDocuments(ctx, added...)
		if err != nil {
			return report, err
		}
		report.Added = len(stored)
	}
	if len(updated) > 0 {
		stored, err := p.repository.UpdateDocuments(ctx, updated...)
		if err != nil {
			return report, err
		}
		report.Updated = len(stored)
	}

	p.logger.Info("ingestion complete", "added", report.Added, "updated", report.Updated, "skipped", report.Skipped)
	return report, nil
}

// partition separates new chunks from those already indexed. Repeated
// content within docs is dropped. In replace mode indexed chunks take the
// ID of the stored document and are returned for update.
func (p *Pipeline) partition(ctx context.Context, docs []*core.Document) (added, updated []*core.Document, err error) {
	seen := make(map[core.ID]bool, len(docs))
	for _, doc := range docs {
		hash := core.ContentHash(doc.Content)
		if seen[hash] {
			continue
		}
		seen[hash] = true

		if !p.replaceExisting {
			exists, err := p.repository.HasContent(ctx, hash)
			if err != nil {
				return nil, nil, err
			}
			if !exists {
				added = append(added, doc)
			}
			continue
		}

		existing, err := p.repository.FindByContent(ctx, hash)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			added = append(added, doc)
		case err != nil:
			return nil, nil, err
		default:
			doc.Id = existing.Id
			updated = append(updated, doc)
		}
	}
	return added, updated, nil
}

// embed runs one embedding batch per pool task and waits for all of them.
func (p *Pipeline) embed(ctx context.Context, docs []*core.Document) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for batch := range slices.Chunk(docs, p.batchSize) {
		wg.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			if err := p.embeddingProc.process(ctx, batch); err != nil {
				p.logger.Error("error embedding batch", "documents", len(batch), "err", err)
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	return firstErr
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
