package retrieval

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
)

const (
	DefaultTopK              = 5
	DefaultMinSimilarity     = 0.3
	DefaultMinFragmentLength = 10

	contextSeparator = "\n\n---\n\n"
)

// NoInformationAnswer is returned when nothing relevant was found or the
// answer could not be produced.
const NoInformationAnswer = "죄송합니다. 제공된 컨텍스트에 해당 정보가 없습니다. 다른 질문을 해주시거나, 재생에너지 관련 질문을 구체적으로 말씀해 주세요."

// Retriever answers a question from the document index.
type Retriever interface {
	Retrieve(ctx context.Context, query, history string) Result
}

// Engine answers questions by retrieving passages and generating from them.
type Engine struct {
	index             storage.VectorSearcher
	embedder          ai.Embedder
	generator         ai.Generator
	topK              int
	minSimilarity     float64
	minFragmentLength int
	logger            *slog.Logger
}

var _ Retriever = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine) error

// WithTopK sets how many nearest neighbors are requested per query.
// Default is 5.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k <= 0 {
			return ErrInvalidTopK
		}
		e.topK = k
		return nil
	}
}

// WithMinSimilarity sets the lowest similarity a passage needs to be used.
// Default is 0.3.
func WithMinSimilarity(threshold float64) Option {
	return func(e *Engine) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidSimilarity
		}
		e.minSimilarity = threshold
		return nil
	}
}

// WithMinFragmentLength sets the shortest sentence or answer line kept,
// in characters. Default is 10.
func WithMinFragmentLength(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return ErrInvalidFragmentLength
		}
		e.minFragmentLength = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a retrieval engine over index using the provider's
// embedder and generator.
func NewEngine(index storage.VectorSearcher, provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		index:             index,
		embedder:          provider.Embedder(),
		generator:         provider.Generator(),
		topK:              DefaultTopK,
		minSimilarity:     DefaultMinSimilarity,
		minFragmentLength: DefaultMinFragmentLength,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Retrieve answers query from the index. history is a pre-formatted
// transcript of earlier turns and may be empty.
func (e *Engine) Retrieve(ctx context.Context, query, history string) Result {
	return e.RetrieveWithMonitor(ctx, query, history, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each stage.
//
// Failures of the embedder, the index or the generator never escape: the
// result carries NoInformationAnswer and an Error naming the stage.
func (e *Engine) RetrieveWithMonitor(ctx context.Context, query, history string, monitor Monitor) Result {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	result := e.retrieve(ctx, query, history, monitor)
	monitor.Finish(result)
	return result
}

func (e *Engine) retrieve(ctx context.Context, query, history string, monitor Monitor) Result {
	// 1. Nearest neighbors of the query
	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		return failed(StageEmbed, err)
	}
	// Stored vectors are unit length; the query must be too.
	vector = core.NormalizeVector(vector)

	neighbors, err := e.index.NearestNeighbors(ctx, vector, e.topK)
	if err != nil {
		e.logger.Error("error querying for nearest documents", "err", err)
		return failed(StageSearch, err)
	}
	monitor.AfterNeighborSearch(neighbors)

	// 2-3. Similarity threshold
	relevant := make([]core.ScoredDocument, 0, len(neighbors))
	for _, n := range neighbors {
		similarity := core.SimilarityFromDistance(n.Distance)
		if similarity >= e.minSimilarity {
			relevant = append(relevant, core.ScoredDocument{Document: n.Document, Similarity: similarity})
		}
	}
	monitor.AfterThreshold(relevant)

	if len(relevant) == 0 {
		e.logger.Warn("no relevant documents for query", "query", query, "candidates", len(neighbors))
		return Result{Answer: NoInformationAnswer}
	}

	// 4. Deduplicate by trimmed content, best match first
	slices.SortStableFunc(relevant, bySimilarityDesc)
	unique := dedupe(relevant)
	monitor.AfterDedup(unique)

	// 5-6. Clean passages and build the context block
	parts := make([]string, 0, len(unique))
	for _, doc := range unique {
		if cleaned := cleanPassage(doc.Document.Content, e.minFragmentLength); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	contextBlock := strings.Join(parts, contextSeparator)
	monitor.AfterContextAssembly(contextBlock)

	answer, err := e.generator.Generate(ctx, ai.Prompt{
		History:  history,
		Context:  contextBlock,
		Question: query,
	})
	if err != nil {
		e.logger.Error("error generating answer", "err", err)
		return failed(StageGenerate, err)
	}

	// 7. Post-process
	answer = postProcess(answer, e.minFragmentLength)
	if answer == "" {
		e.logger.Warn("generated answer was empty after cleanup", "query", query)
		return Result{Answer: NoInformationAnswer}
	}

	return Result{Answer: answer, Documents: unique}
}

// Search returns the k nearest documents to query with their similarity,
// without threshold or deduplication.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]core.ScoredDocument, error) {
	if k <= 0 {
		k = e.topK
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, &Error{Stage: StageEmbed, Cause: err}
	}
	vector = core.NormalizeVector(vector)

	neighbors, err := e.index.NearestNeighbors(ctx, vector, k)
	if err != nil {
		return nil, &Error{Stage: StageSearch, Cause: err}
	}

	results := make([]core.ScoredDocument, 0, len(neighbors))
	for _, n := range neighbors {
		results = append(results, core.ScoredDocument{
			Document:   n.Document,
			Similarity: core.SimilarityFromDistance(n.Distance),
		})
	}
	slices.SortStableFunc(results, bySimilarityDesc)
	return results, nil
}

func failed(stage Stage, err error) Result {
	return Result{Answer: NoInformationAnswer, Err: &Error{Stage: stage, Cause: err}}
}

func dedupe(docs []core.ScoredDocument) []core.ScoredDocument {
	seen := make(map[core.ID]bool, len(docs))
	unique := make([]core.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		hash := core.ContentHash(doc.Document.Content)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		unique = append(unique, doc)
	}
	return unique
}

func bySimilarityDesc(a, b core.ScoredDocument) int {
	switch {
	case a.Similarity > b.Similarity:
		return -1
	case a.Similarity < b.Similarity:
		return 1
	default:
		return 0
	}
}
