package fusion

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/normalize"
)

const (
	reasonText     = "text match"
	reasonSynonym  = "synonym match (%s)"
	reasonSemantic = "semantic similarity (%d%%)"
	reasonJoiner   = " + "
)

// Engine merges per-source candidates into one ranking.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	normalizer *normalize.Normalizer
	config     Config
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "fusion")
		return nil
	}
}

// WithConfig replaces the default constants.
func WithConfig(config Config) Option {
	return func(e *Engine) error {
		if config.CategoryRules == nil {
			config.CategoryRules = DefaultConfig().CategoryRules
		}
		e.config = config
		return nil
	}
}

// WithNormalizer sets the score normalizer.
// Default uses normalize.DefaultConfig().
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Engine) error {
		if n != nil {
			e.normalizer = n
		}
		return nil
	}
}

// NewEngine creates a fusion engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		normalizer: normalize.New(normalize.DefaultConfig()),
		config:     DefaultConfig(),
		logger:     slog.Default().With("component", "fusion"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Fuse merges lexical, synonym and vector candidates of one kind into one
// result per entity id, sorted by score descending then id ascending.
// The output depends only on its inputs.
func (e *Engine) Fuse(query string, kind core.EntityKind, candidates *core.Candidates) []*core.FusedResult {
	if candidates == nil {
		return []*core.FusedResult{}
	}

	f := &merger{results: make(map[core.ID]*core.FusedResult)}

	for _, c := range candidates.Lexical {
		f.add(c, func(r *core.FusedResult, v view) (float64, string, bool) {
			score := e.normalizer.Normalize(c.RawScore, core.SourceLexical) + e.config.matchBonus(kind, query, v)
			return normalize.Clamp100(score), reasonText, true
		}, core.SourceLexical)
	}

	for _, c := range candidates.Synonym {
		term := c.Term
		if term == "" {
			term = query
		}
		f.add(c, func(r *core.FusedResult, v view) (float64, string, bool) {
			score := e.normalizer.Normalize(c.RawScore, core.SourceSynonym) + e.config.matchBonus(kind, term, v)
			return normalize.Clamp100(score) * e.config.SynonymDiscount, fmt.Sprintf(reasonSynonym, term), true
		}, core.SourceSynonym)
	}

	for _, c := range candidates.Vector {
		f.add(c, func(r *core.FusedResult, v view) (float64, string, bool) {
			factor := e.config.verification(query, v)
			if factor < e.config.VerificationFloor {
				e.logger.Debug("discarding unverified vector hit", "name", r.Entity.Name, "factor", factor)
				return 0, "", false
			}
			score := e.normalizer.Normalize(c.RawScore, core.SourceVector) * factor * e.config.VectorWeight
			return score, fmt.Sprintf(reasonSemantic, int(math.Round(factor*100))), true
		}, core.SourceVector)
	}

	out := make([]*core.FusedResult, 0, len(f.results))
	for _, r := range f.results {
		r.Score = normalize.Round(r.Score)
		out = append(out, r)
	}
	Sort(out)

	e.logger.Debug("fused candidates",
		"kind", kind.String(),
		"in", candidates.Count(),
		"out", len(out))
	return out
}

// merger is the per-call merge state.
type merger struct {
	results map[core.ID]*core.FusedResult
	views   map[core.ID]view
}

type scorer func(r *core.FusedResult, v view) (score float64, reason string, keep bool)

func (f *merger) add(c *core.CandidateResult, score scorer, source core.SourceKind) {
	if c == nil || c.Entity == nil {
		return
	}
	id := c.Entity.Id

	existing, found := f.results[id]
	r := existing
	if !found {
		r = &core.FusedResult{
			Entity:      c.Entity,
			Ingredients: parseIngredients(c.Entity),
		}
	}
	if f.views == nil {
		f.views = make(map[core.ID]view)
	}
	v, ok := f.views[id]
	if !ok {
		v = newView(r.Entity, r.Ingredients)
		f.views[id] = v
	}

	value, reason, keep := score(r, v)
	if !keep {
		return
	}

	if !found {
		r.Score = value
		r.Sources = []core.SourceKind{source}
		r.Reason = reason
		f.results[id] = r
		return
	}

	r.Score = max(r.Score, value)
	if !r.HasSource(source) {
		r.Sources = append(r.Sources, source)
		r.Reason = strings.Join([]string{r.Reason, reason}, reasonJoiner)
	}
}

func parseIngredients(e *core.Entity) []core.RecipeIngredient {
	if e.Kind != core.EntityKindRecipe {
		return []core.RecipeIngredient{}
	}
	return core.ExtractIngredients(e.IngredientsText)
}

// Sort orders results by score descending, ties by entity id ascending.
func Sort(results []*core.FusedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entity.Id < results[j].Entity.Id
	})
}
