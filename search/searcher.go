package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/paperbridge/ai"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

const (
	// DefaultLexicalWeight is the share of the combined score taken from
	// keyword overlap; the rest comes from vector similarity.
	DefaultLexicalWeight float32 = 0.3

	// DefaultMinSimilarity is the vector similarity floor for candidates.
	DefaultMinSimilarity float32 = 0.60

	// maxVectorCandidates caps how many chunks are pulled for reranking.
	maxVectorCandidates = 200
)

// Result is a document chunk matched against a query, with its scores.
type Result struct {
	Chunk         *core.Embedding
	VectorScore   float32
	LexicalScore  float32
	CombinedScore float32
	Rank          int
}

// Searcher provides hybrid semantic and lexical search over document chunks.
type Searcher struct {
	embeddings    storage.EmbeddingRepository
	embedder      ai.Embedder
	lexicalWeight float32
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithLexicalWeight sets how much keyword overlap contributes to the
// combined score. Values are clipped to [0, 1].
func WithLexicalWeight(weight float32) Option {
	return func(s *Searcher) error {
		s.lexicalWeight = clip(weight)
		return nil
	}
}

// WithMinSimilarity sets the vector similarity floor for candidate chunks.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = clip(minSimilarity)
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	embeddings storage.EmbeddingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		embeddings:    embeddings,
		embedder:      embedder,
		lexicalWeight: DefaultLexicalWeight,
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search finds document chunks relevant to the query.
// Returns up to topK results, ranked by combined score.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]*Result, error) {
	return s.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor searches with monitoring callbacks at each stage.
// Returns up to topK results, ranked by combined score.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) ([]*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 {
		topK = 1
	}

	monitor.Start(query)

	// 1. Embed the query
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	vector = core.NormalizeVector(vector)
	monitor.AfterQueryEmbedding(vector)

	// 2. Pull vector candidates, over-fetching for the rerank
	candidates := topK * 4
	if candidates > maxVectorCandidates {
		candidates = maxVectorCandidates
	}
	matches, err := s.embeddings.FindSimilar(ctx, vector, s.minSimilarity, candidates)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	if len(matches) == 0 {
		return []*Result{}, nil
	}

	// 3. Rerank with keyword overlap
	tokens := keywordTokens(query)
	monitor.AfterLexicalRerank(tokens)

	results := make([]*Result, 0, len(matches))
	for _, match := range matches {
		vectorScore := clip(match.Score)
		lexicalScore := overlapScore(match.Chunk.Content, tokens)
		combined := (1-s.lexicalWeight)*vectorScore + s.lexicalWeight*lexicalScore

		results = append(results, &Result{
			Chunk:         match.Chunk,
			VectorScore:   vectorScore,
			LexicalScore:  lexicalScore,
			CombinedScore: combined,
		})
	}

	// Sort by combined score descending, vector score as tiebreak
	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].VectorScore > results[j].VectorScore
	})
	if len(results) > topK {
		results = results[:topK]
	}
	for i, result := range results {
		result.Rank = i + 1
	}
	monitor.Finish(results)

	s.logger.Info("search complete",
		"query", query,
		"candidates", len(matches),
		"results", len(results))
	return results, nil
}
