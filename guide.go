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

// Package energuide wires the document index, the AI provider and the
// conversational components of the renewable-energy guide together.
package energuide

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/energuide/agent"
	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/ai/openai"
	"github.com/poiesic/energuide/config"
	"github.com/poiesic/energuide/ingestion"
	"github.com/poiesic/energuide/intent"
	"github.com/poiesic/energuide/reindex"
	"github.com/poiesic/energuide/retrieval"
	"github.com/poiesic/energuide/server"
	"github.com/poiesic/energuide/storage"
	"github.com/poiesic/energuide/storage/badger"
)

// RetrievalBackend names the index implementation in system info.
const RetrievalBackend = "badger"

// Guide owns the document index and AI provider.
type Guide struct {
	backend  *badger.Backend
	repo     *badger.DocumentRepository
	provider ai.AIProvider
	config   *config.AppConfig
	logger   *slog.Logger
}

// GuideOption configures a Guide.
type GuideOption func(*guideOptions)

type guideOptions struct {
	config   *config.AppConfig
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithConfig sets the application config. Default is config.Default().
func WithConfig(cfg *config.AppConfig) GuideOption {
	return func(o *guideOptions) {
		o.config = cfg
	}
}

// WithProvider uses provider instead of building an OpenAI-compatible one
// from the config. The guide takes ownership and closes it.
func WithProvider(provider ai.AIProvider) GuideOption {
	return func(o *guideOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps the index in memory; the path is ignored.
func WithInMemory() GuideOption {
	return func(o *guideOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) GuideOption {
	return func(o *guideOptions) {
		o.logger = logger
	}
}

// Open opens the index at path. An empty path uses database.path from the
// config.
func Open(path string, opts ...GuideOption) (*Guide, error) {
	options := &guideOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.Default()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if path == "" {
		path = options.config.Database.Path
	}

	backend, err := badger.OpenBackendWithLogger(path, options.inMemory, options.logger)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.config.AIConfig())
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Guide{
		backend:  backend,
		repo:     repo,
		provider: provider,
		config:   options.config,
		logger:   options.logger,
	}, nil
}

// Close releases the provider and the index.
func (g *Guide) Close() error {
	if err := g.provider.Close(); err != nil {
		g.logger.Error("error closing AI provider", "err", err)
	}

	var errs []error
	if err := g.repo.Close(); err != nil {
		g.logger.Error("error closing document repository", "err", err)
		errs = append(errs, err)
	}
	if err := g.backend.Close(); err != nil {
		g.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (g *Guide) Repository() storage.DocumentRepository {
	return g.repo
}

func (g *Guide) Provider() ai.AIProvider {
	return g.provider
}

func (g *Guide) Config() *config.AppConfig {
	return g.config
}

// CountDocuments returns the number of indexed passages.
func (g *Guide) CountDocuments(ctx context.Context) (int, error) {
	return g.repo.CountDocuments(ctx)
}

// NewEngine creates a retrieval engine tuned by the retrieval section of the
// config. opts are applied after the config values.
func (g *Guide) NewEngine(opts ...retrieval.Option) (*retrieval.Engine, error) {
	rc := g.config.Retrieval
	base := []retrieval.Option{
		retrieval.WithTopK(rc.TopK),
		retrieval.WithMinSimilarity(rc.MinSimilarity),
		retrieval.WithMinFragmentLength(rc.MinFragmentLength),
		retrieval.WithLogger(g.logger),
	}
	return retrieval.NewEngine(g.repo, g.provider, append(base, opts...)...)
}

// NewClassifier creates a keyword classifier with the configured intent
// overrides merged into the defaults.
func (g *Guide) NewClassifier() (*intent.KeywordClassifier, error) {
	extra, err := g.config.IntentRules()
	if err != nil {
		return nil, err
	}
	return intent.NewKeywordClassifier(intent.WithExtraRules(extra), intent.WithLogger(g.logger))
}

// NewAgent creates an agent answering from retriever with its own
// conversation.
func (g *Guide) NewAgent(retriever retrieval.Retriever, opts ...agent.Option) (*agent.Agent, error) {
	classifier, err := g.NewClassifier()
	if err != nil {
		return nil, err
	}
	base := []agent.Option{
		agent.WithClassifier(classifier),
		agent.WithWindow(g.config.Conversation.Window),
		agent.WithSystemInfo(RetrievalBackend, g.config.AI.EmbeddingModel, g.repo),
		agent.WithLogger(g.logger),
	}
	return agent.New(retriever, append(base, opts...)...)
}

// NewSessionStore creates the per-session agent store of the HTTP server.
// All sessions share retriever.
func (g *Guide) NewSessionStore(retriever retrieval.Retriever) (*server.SessionStore, error) {
	sc := g.config.Server
	return server.NewSessionStore(func() (*agent.Agent, error) {
		return g.NewAgent(retriever)
	}, sc.SessionTTL, sc.CleanupInterval)
}

// NewIngestionPipeline creates a pipeline tuned by the ingestion section of
// the config. Callers must Release it.
func (g *Guide) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ic := g.config.Ingestion
	base := []ingestion.Option{
		ingestion.WithChunking(ic.ChunkSize, ic.ChunkOverlap),
		ingestion.WithBatchSize(ic.BatchSize),
		ingestion.WithLogger(g.logger),
	}
	if ic.PoolSize > 0 {
		base = append(base, ingestion.WithPoolSize(ic.PoolSize))
	}
	return ingestion.NewPipeline(g.repo, g.provider, append(base, opts...)...)
}

// NewReindexer creates a rebuild job writing progress to progress.
func (g *Guide) NewReindexer(progress io.Writer) *reindex.Reindexer {
	rc := g.config.Reindex
	return reindex.NewReindexer(g.repo, g.provider.Embedder(), &reindex.Config{
		BatchSize:      rc.BatchSize,
		ReportInterval: rc.BatchSize,
		MaxRetries:     rc.MaxRetries,
		RetryDelay:     rc.RetryDelay,
		Workers:        rc.Workers,
	}, progress)
}
