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
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
	"github.com/panjf2000/ants/v2"
)

// Config holds configuration for a rebuild.
type Config struct {
	// BatchSize is the number of documents embedded per request.
	BatchSize int

	// ReportInterval is how often progress is written, in documents.
	ReportInterval int

	// MaxRetries is the number of attempts per batch.
	MaxRetries int

	// RetryDelay is the delay after the first failed attempt. It doubles
	// after every further failure.
	RetryDelay time.Duration

	// Workers is the number of batches embedded concurrently. Values below
	// 1 mean 1.
	Workers int
}

// DefaultConfig returns the default rebuild settings.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultBatchSize,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        1,
	}
}

// Report summarizes a rebuild.
type Report struct {
	Documents int
	Elapsed   time.Duration
}

// Reindexer replaces the vector of every stored document using the current
// embedder, typically after the embedding model changed.
type Reindexer struct {
	repo      storage.DocumentRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
	logger    *slog.Logger
}

// NewReindexer creates a new reindexer writing progress to progress.
// A nil config selects DefaultConfig.
func NewReindexer(repo storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	retry := RetryPolicy{MaxAttempts: max(config.MaxRetries, 1), BaseDelay: config.RetryDelay}
	return &Reindexer{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, retry),
		iterator:  NewDocumentIterator(repo, config.BatchSize),
		logger:    slog.Default().With("component", "reindex"),
	}
}

// Run re-embeds every document. Documents of batches finished before a
// failure keep their new vectors.
func (r *Reindexer) Run(ctx context.Context) (Report, error) {
	total, err := r.repo.CountDocuments(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents in the index\n")
		return Report{}, nil
	}

	fmt.Fprintf(r.progress, "Re-embedding %d documents (batch size: %d)\n", total, r.iterator.batchSize)
	r.logger.Info("reindex started", "documents", total)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(max(r.config.Workers, 1))
	if err != nil {
		return Report{}, err
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
		batchErr  error
	)
	failed := func() error {
		mu.Lock()
		defer mu.Unlock()
		return batchErr
	}

	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		if err := failed(); err != nil {
			return err
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if failed() != nil {
				return
			}
			err := r.processor.Process(ctx, docs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if batchErr == nil {
					batchErr = fmt.Errorf("failed to process batch after document %d: %w", docs[0].Id, err)
				}
				return
			}
			processed += len(docs)
			tracker.Add(len(docs))
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
		return nil
	})
	wg.Wait()
	if err == nil {
		err = failed()
	}
	if err != nil {
		r.logger.Error("reindex failed", "processed", processed, "err", err)
		return Report{Documents: processed, Elapsed: tracker.Elapsed()}, err
	}

	tracker.Finish()
	report := Report{Documents: processed, Elapsed: tracker.Elapsed()}
	fmt.Fprintf(r.progress, "Re-embedding complete. %d documents in %v\n",
		report.Documents, report.Elapsed.Round(time.Millisecond))
	r.logger.Info("reindex complete", "documents", report.Documents, "elapsed", report.Elapsed)

	return report, nil
}
