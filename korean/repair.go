package korean

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/poiesic/recipesearch/core"
)

// FuzzyLookup finds index entries whose text resembles the query.
// storage.LexicalSearcher satisfies it.
type FuzzyLookup interface {
	SearchByText(ctx context.Context, kind core.EntityKind, query string, limit int) ([]*core.CandidateResult, error)
}

// Config holds the repair acceptance rules.
type Config struct {
	AcceptScore         float64 `mapstructure:"accept_score" validate:"gte=0"`
	AcceptSimilarity    float64 `mapstructure:"accept_similarity" validate:"gte=0,lte=1"`
	CandidateSimilarity float64 `mapstructure:"candidate_similarity" validate:"gte=0,lte=1"`
	LookupLimit         int     `mapstructure:"lookup_limit" validate:"gte=1"`
	MaxSuggestions      int     `mapstructure:"max_suggestions" validate:"gte=0"`
	CacheSize           int     `mapstructure:"cache_size" validate:"gte=1"`
}

// DefaultConfig returns the standard repair settings.
func DefaultConfig() Config {
	return Config{
		AcceptScore:         2.0,
		AcceptSimilarity:    0.7,
		CandidateSimilarity: 0.5,
		LookupLimit:         10,
		MaxSuggestions:      5,
		CacheSize:           1024,
	}
}

type repairResult struct {
	correction  *core.Correction
	suggestions []string
}

// Repairer corrects Korean query text. It is safe for concurrent use.
type Repairer struct {
	lookup FuzzyLookup
	config Config
	cache  *lru.Cache[string, repairResult]
	logger *slog.Logger
}

// Option configures a Repairer.
type Option func(*Repairer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repairer) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "repair")
		return nil
	}
}

// WithConfig overrides the default repair settings.
func WithConfig(config Config) Option {
	return func(r *Repairer) error {
		if config.CacheSize <= 0 {
			return ErrInvalidCacheSize
		}
		r.config = config
		return nil
	}
}

// NewRepairer creates a repairer backed by the given lookup.
func NewRepairer(lookup FuzzyLookup, opts ...Option) (*Repairer, error) {
	if lookup == nil {
		return nil, ErrLookupRequired
	}
	r := &Repairer{
		lookup: lookup,
		config: DefaultConfig(),
		logger: slog.Default().With("component", "repair"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	cache, err := lru.New[string, repairResult](r.config.CacheSize)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

// Repair returns text with split jamo recomposed and typos corrected
// against the index. Lookup failures leave the text uncorrected.
// The returned query carries only Text; callers fill in scope and limit.
func (r *Repairer) Repair(ctx context.Context, text string) core.CorrectedQuery {
	original := strings.TrimSpace(text)
	cq := core.CorrectedQuery{Query: core.Query{Text: original}}
	if original == "" {
		return cq
	}
	if cached, ok := r.cache.Get(original); ok {
		cq.Correction = cached.correction
		cq.Suggestions = cached.suggestions
		return cq
	}

	normalized := norm.NFC.String(original)
	current := normalized
	method := core.CorrectionMethod("")
	if normalized != original {
		method = core.CorrectionJamo
	}
	if ContainsJamo(normalized) {
		composed := Recompose(stripSpaceIfJamoOnly(normalized))
		if composed != normalized {
			r.logger.Debug("recomposed jamo", "original", original, "composed", composed)
			current = composed
			method = core.CorrectionJamo
		}
	}

	corrected, ok, err := r.fuzzyMatch(ctx, current)
	if err != nil {
		r.logger.Warn("fuzzy lookup failed, skipping correction", "query", current, "err", err)
	} else if ok {
		r.logger.Debug("corrected typo", "original", original, "corrected", corrected)
		current = corrected
		method = core.CorrectionFuzzy
	}

	result := repairResult{suggestions: Suggestions(original, r.config.MaxSuggestions)}
	if current != original {
		result.correction = &core.Correction{
			Original:  original,
			Corrected: current,
			Method:    method,
		}
	}
	// Lookup failures are not cached.
	if err == nil {
		r.cache.Add(original, result)
	}

	cq.Correction = result.correction
	cq.Suggestions = result.suggestions
	return cq
}

// RepairBatch repairs each text independently, as produced by OCR over a
// recipe image.
func (r *Repairer) RepairBatch(ctx context.Context, texts []string) []core.CorrectedQuery {
	out := make([]core.CorrectedQuery, 0, len(texts))
	for _, text := range texts {
		if ctx.Err() != nil {
			out = append(out, core.CorrectedQuery{Query: core.Query{Text: strings.TrimSpace(text)}})
			continue
		}
		out = append(out, r.Repair(ctx, text))
	}
	return out
}

type fuzzyCandidate struct {
	name       string
	combined   float64
	similarity float64
}

// fuzzyMatch looks word up in the recipe and ingredient indexes and returns
// the best accepted candidate name.
func (r *Repairer) fuzzyMatch(ctx context.Context, word string) (string, bool, error) {
	var candidates []fuzzyCandidate
	for _, kind := range []core.EntityKind{core.EntityKindRecipe, core.EntityKindIngredient} {
		hits, err := r.lookup.SearchByText(ctx, kind, word, r.config.LookupLimit)
		if err != nil {
			return "", false, err
		}
		for _, hit := range hits {
			if hit == nil || hit.Entity == nil {
				continue
			}
			sim := EditSimilarity(word, hit.Entity.Name)
			if sim <= r.config.CandidateSimilarity {
				continue
			}
			candidates = append(candidates, fuzzyCandidate{
				name:       hit.Entity.Name,
				combined:   hit.RawScore * sim,
				similarity: sim,
			})
		}
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].combined > candidates[j].combined
	})
	best := candidates[0]
	if best.name == word {
		return "", false, nil
	}
	if best.combined > r.config.AcceptScore || best.similarity > r.config.AcceptSimilarity {
		return best.name, true, nil
	}
	return "", false, nil
}
