package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/recipesearch/ai"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/storage"
	"github.com/poiesic/recipesearch/synonym"
	"github.com/poiesic/recipesearch/text"
)

// Config tunes the fan-out.
type Config struct {
	LexicalTimeout time.Duration `mapstructure:"lexical_timeout" validate:"gte=0"`
	VectorTimeout  time.Duration `mapstructure:"vector_timeout" validate:"gte=0"`

	// VectorLimitFactor multiplies the requested limit for vector search,
	// since verification during fusion discards many vector hits.
	VectorLimitFactor int `mapstructure:"vector_limit_factor" validate:"gte=1"`

	// MaxExpansions caps the synonym sub-queries per request.
	MaxExpansions int `mapstructure:"max_expansions" validate:"gte=0"`

	// SynonymConcurrency caps concurrent synonym sub-queries.
	SynonymConcurrency int `mapstructure:"synonym_concurrency" validate:"gte=1"`

	IngredientMarkers []string     `mapstructure:"ingredient_markers"`
	Policy            VectorPolicy `mapstructure:"vector_policy"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		LexicalTimeout:     3 * time.Second,
		VectorTimeout:      5 * time.Second,
		VectorLimitFactor:  2,
		MaxExpansions:      8,
		SynonymConcurrency: 4,
		IngredientMarkers:  DefaultIngredientMarkers,
		Policy:             DefaultVectorPolicy(),
	}
}

// Orchestrator fans a corrected query out to lexical, synonym-expanded
// lexical and vector search. It never fails: a source that errors or times
// out contributes an empty candidate set.
type Orchestrator struct {
	lexical  storage.LexicalSearcher
	vector   storage.VectorSearcher
	embedder ai.Embedder
	expander *synonym.Expander
	config   Config
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "retrieval")
		return nil
	}
}

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(o *Orchestrator) error {
		if config.VectorLimitFactor < 1 {
			config.VectorLimitFactor = 1
		}
		if config.SynonymConcurrency < 1 {
			config.SynonymConcurrency = 1
		}
		o.config = config
		return nil
	}
}

// WithVectorSearch enables embedding search. Without it the vector source
// is always empty.
func WithVectorSearch(searcher storage.VectorSearcher, embedder ai.Embedder) Option {
	return func(o *Orchestrator) error {
		if searcher == nil {
			return nil
		}
		if embedder == nil {
			return ErrEmbedderRequired
		}
		o.vector = searcher
		o.embedder = embedder
		return nil
	}
}

// NewOrchestrator creates an orchestrator over the given searchers.
func NewOrchestrator(lexical storage.LexicalSearcher, expander *synonym.Expander, opts ...Option) (*Orchestrator, error) {
	if lexical == nil {
		return nil, ErrLexicalSearcherRequired
	}
	if expander == nil {
		return nil, ErrExpanderRequired
	}

	o := &Orchestrator{
		lexical:  lexical,
		expander: expander,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "retrieval"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Retrieve returns the per-source candidates for one entity kind.
// Lexical search and, for ingredient-seeking queries, synonym sub-queries run
// concurrently; vector search follows lexical search when the vector policy
// allows it.
func (o *Orchestrator) Retrieve(ctx context.Context, cq core.CorrectedQuery, kind core.EntityKind, limit int) *core.Candidates {
	query := cq.Effective()
	logger := o.logger.With("kind", kind.String())

	var (
		mu  sync.Mutex
		out core.Candidates
		g   errgroup.Group
	)

	g.Go(func() error {
		lexical := o.searchLexical(ctx, logger, kind, query, limit)

		var vector []*core.CandidateResult
		decision := o.config.Policy.Decide(query, len(lexical))
		switch {
		case o.vector == nil:
			logger.Debug("vector search not configured")
		case decision.Run:
			logger.Debug("running vector search", "reason", decision.Reason, "lexical", len(lexical))
			vector = o.searchVector(ctx, logger, kind, query, limit*o.config.VectorLimitFactor)
		default:
			logger.Debug("skipping vector search", "reason", decision.Reason, "lexical", len(lexical))
		}

		mu.Lock()
		out.Lexical = lexical
		out.Vector = vector
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		synonyms := o.searchSynonyms(ctx, logger, kind, query, limit)
		mu.Lock()
		out.Synonym = synonyms
		mu.Unlock()
		return nil
	})

	// Branches never return errors
	_ = g.Wait()

	logger.Debug("retrieval complete",
		"query", query,
		"lexical", len(out.Lexical),
		"vector", len(out.Vector),
		"synonym", len(out.Synonym))
	return &out
}

// searchLexical runs keyword search with stop words removed.
func (o *Orchestrator) searchLexical(ctx context.Context, logger *slog.Logger, kind core.EntityKind, query string, limit int) []*core.CandidateResult {
	keywords := text.Keywords(query)
	if len(keywords) == 0 {
		logger.Debug("no keywords left after stop word removal", "query", query)
		return nil
	}

	ctx, cancel := withTimeout(ctx, o.config.LexicalTimeout)
	defer cancel()

	results, err := o.lexical.SearchByText(ctx, kind, strings.Join(keywords, " "), limit)
	if err != nil {
		logger.Warn("lexical search failed", "query", query, "err", err)
		return nil
	}
	return tag(results, core.SourceLexical)
}

// searchVector embeds the query and runs similarity search.
func (o *Orchestrator) searchVector(ctx context.Context, logger *slog.Logger, kind core.EntityKind, query string, limit int) []*core.CandidateResult {
	ctx, cancel := withTimeout(ctx, o.config.VectorTimeout)
	defer cancel()

	vec, err := o.embedder.EmbedText(ctx, query)
	if err != nil {
		logger.Warn("query embedding failed", "query", query, "err", err)
		return nil
	}

	results, err := o.vector.SearchByVector(ctx, kind, vec, limit)
	if err != nil {
		logger.Warn("vector search failed", "query", query, "err", err)
		return nil
	}
	return tag(results, core.SourceVector)
}

// searchSynonyms searches every expansion of the core term of an
// ingredient-seeking query and keeps hits that actually mention the
// expansion. Each entity keeps its highest scoring hit. Other queries get no
// synonym candidates.
func (o *Orchestrator) searchSynonyms(ctx context.Context, logger *slog.Logger, kind core.EntityKind, query string, limit int) []*core.CandidateResult {
	term, seeking := IngredientIntent(query, o.config.IngredientMarkers)
	if !seeking || term == "" {
		return nil
	}

	folded := text.Fold(query)
	terms := make([]string, 0, o.config.MaxExpansions)
	for _, expansion := range o.expander.Expand(term) {
		if text.Fold(expansion) == folded {
			continue
		}
		if len(terms) == o.config.MaxExpansions {
			break
		}
		terms = append(terms, expansion)
	}
	if len(terms) == 0 {
		return nil
	}
	logger.Debug("synonym sub-queries", "term", term, "terms", terms)

	var (
		mu   sync.Mutex
		best = make(map[core.ID]*core.CandidateResult)
		g    errgroup.Group
	)
	g.SetLimit(o.config.SynonymConcurrency)

	for _, expansion := range terms {
		g.Go(func() error {
			tctx, cancel := withTimeout(ctx, o.config.LexicalTimeout)
			defer cancel()

			results, err := o.lexical.SearchByText(tctx, kind, expansion, limit)
			if err != nil {
				logger.Warn("synonym search failed", "term", expansion, "err", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range results {
				if r == nil || r.Entity == nil || !mentions(r.Entity, expansion) {
					continue
				}
				if prev, ok := best[r.Entity.Id]; ok && prev.RawScore >= r.RawScore {
					continue
				}
				best[r.Entity.Id] = &core.CandidateResult{
					Entity:   r.Entity,
					RawScore: r.RawScore,
					Source:   core.SourceSynonym,
					Term:     expansion,
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*core.CandidateResult, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	storage.SortCandidates(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// mentions reports whether the entity's name, ingredient text or aliases
// contain term.
func mentions(e *core.Entity, term string) bool {
	t := text.Fold(term)
	if strings.Contains(text.Fold(e.Name), t) || strings.Contains(text.Fold(e.IngredientsText), t) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.Contains(text.Fold(alias), t) {
			return true
		}
	}
	return false
}

func tag(results []*core.CandidateResult, source core.SourceKind) []*core.CandidateResult {
	out := make([]*core.CandidateResult, 0, len(results))
	for _, r := range results {
		if r == nil || r.Entity == nil {
			continue
		}
		r.Source = source
		out = append(out, r)
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
