package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/fusion"
	"github.com/poiesic/recipesearch/korean"
	"github.com/poiesic/recipesearch/rerank"
	"github.com/poiesic/recipesearch/retrieval"
	"github.com/poiesic/recipesearch/threshold"
)

// Config holds request limits and the vector gate.
type Config struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"gte=1,ltefield=MaxLimit"`
	MaxLimit     int `mapstructure:"max_limit" validate:"gte=1"`

	// VectorGateRatio scales the dynamic threshold for results backed only
	// by vector similarity.
	VectorGateRatio float64 `mapstructure:"vector_gate_ratio" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:    10,
		MaxLimit:        50,
		VectorGateRatio: 0.5,
	}
}

// Searcher runs the hybrid recipe and ingredient search pipeline.
type Searcher struct {
	repairer     *korean.Repairer
	orchestrator *retrieval.Orchestrator
	fuser        *fusion.Engine
	reranker     *rerank.Reranker
	thresholds   *threshold.Calculator
	config       Config
	logger       *slog.Logger
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
		s.logger = logger.With("component", "search")
		return nil
	}
}

// WithConfig replaces the default limits.
func WithConfig(config Config) Option {
	return func(s *Searcher) error {
		s.config = config
		return nil
	}
}

// WithReranker enables LLM re-ranking of fused results.
func WithReranker(reranker *rerank.Reranker) Option {
	return func(s *Searcher) error {
		s.reranker = reranker
		return nil
	}
}

// WithThresholdCalculator replaces the default threshold calculator.
func WithThresholdCalculator(calculator *threshold.Calculator) Option {
	return func(s *Searcher) error {
		if calculator != nil {
			s.thresholds = calculator
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	repairer *korean.Repairer,
	orchestrator *retrieval.Orchestrator,
	fuser *fusion.Engine,
	opts ...Option,
) (*Searcher, error) {
	if repairer == nil {
		return nil, ErrRepairerRequired
	}
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if fuser == nil {
		return nil, ErrFusionEngineRequired
	}

	s := &Searcher{
		repairer:     repairer,
		orchestrator: orchestrator,
		fuser:        fuser,
		thresholds:   threshold.NewCalculator(threshold.DefaultConfig()),
		config:       DefaultConfig(),
		logger:       slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search finds recipes and ingredients matching query.
// A zero Limit uses the default limit and an empty Scope searches both kinds.
func (s *Searcher) Search(ctx context.Context, query core.Query) (*core.Response, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor is Search with callbacks at each stage of the pipeline.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query core.Query, monitor SearchMonitor) (*core.Response, error) {
	start := time.Now()

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if query.Limit == 0 {
		query.Limit = s.config.DefaultLimit
	}
	if query.Scope == "" {
		query.Scope = core.ScopeAll
	}
	if err := core.ValidateQuery(&query, s.config.MaxLimit); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)
	monitor.Start(requestID, query)

	// 1. Repair the query text
	cq := s.repairer.Repair(ctx, query.Text)
	cq.Scope = query.Scope
	cq.Limit = query.Limit
	monitor.AfterRepair(cq)
	if cq.Correction != nil {
		logger.Info("query corrected",
			"original", cq.Correction.Original,
			"corrected", cq.Correction.Corrected,
			"method", cq.Correction.Method)
	}

	// 2. Run one pipeline per requested kind
	var (
		mu     sync.Mutex
		g      errgroup.Group
		byKind = make(map[core.EntityKind][]*core.FusedResult)
		kinds  = []core.EntityKind{core.EntityKindRecipe, core.EntityKindIngredient}
	)
	for _, kind := range kinds {
		if !query.Scope.Includes(kind) {
			continue
		}
		g.Go(func() error {
			results := s.searchKind(ctx, logger, cq, kind, monitor)
			mu.Lock()
			byKind[kind] = results
			mu.Unlock()
			return nil
		})
	}
	// Pipelines never return errors
	_ = g.Wait()

	response := &core.Response{
		RequestID:   requestID,
		Recipes:     nonNil(byKind[core.EntityKindRecipe]),
		Ingredients: nonNil(byKind[core.EntityKindIngredient]),
		Correction:  cq.Correction,
		Suggestions: cq.Suggestions,
	}
	response.TotalMatches = len(response.Recipes) + len(response.Ingredients)
	response.ProcessingTime = time.Since(start)
	monitor.Finish(response)

	logger.Info("search complete",
		"query", query.Text,
		"scope", query.Scope,
		"recipes", len(response.Recipes),
		"ingredients", len(response.Ingredients),
		"elapsed_ms", response.ProcessingTimeMs())
	return response, nil
}

// searchKind runs retrieval, fusion, re-ranking and the threshold gate for
// one entity kind.
func (s *Searcher) searchKind(ctx context.Context, logger *slog.Logger, cq core.CorrectedQuery, kind core.EntityKind, monitor SearchMonitor) []*core.FusedResult {
	effective := cq.Effective()

	candidates := s.orchestrator.Retrieve(ctx, cq, kind, cq.Limit)
	monitor.AfterRetrieval(kind, candidates)

	results := s.fuser.Fuse(effective, kind, candidates)
	if len(results) > cq.Limit {
		results = results[:cq.Limit]
	}
	monitor.AfterFusion(kind, results)

	var suggestions []float64
	if s.reranker != nil && len(results) > 0 {
		results, suggestions = s.reranker.Rerank(ctx, effective, results)
		monitor.AfterRerank(kind, results)
	}

	decision := s.thresholds.Calculate(effective, len(candidates.Lexical), suggestions)
	gate := decision.Value * s.config.VectorGateRatio
	kept := make([]*core.FusedResult, 0, len(results))
	for _, r := range results {
		if vectorOnly(r) && r.Score/100 < gate {
			logger.Debug("vector-only result below threshold",
				"kind", kind.String(),
				"name", r.Entity.Name,
				"score", r.Score,
				"gate", gate)
			continue
		}
		kept = append(kept, r)
	}
	monitor.AfterThreshold(kind, decision, len(results)-len(kept))

	return kept
}

// vectorOnly reports whether a result lacks any textual evidence.
func vectorOnly(r *core.FusedResult) bool {
	return r.HasSource(core.SourceVector) &&
		!r.HasSource(core.SourceLexical) &&
		!r.HasSource(core.SourceSynonym)
}

// Repair corrects each text independently and returns typo suggestions.
func (s *Searcher) Repair(ctx context.Context, texts ...string) []core.CorrectedQuery {
	return s.repairer.RepairBatch(ctx, texts)
}

func nonNil(results []*core.FusedResult) []*core.FusedResult {
	if results == nil {
		return []*core.FusedResult{}
	}
	return results
}
