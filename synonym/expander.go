package synonym

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/recipesearch/text"
)

// Match is a resolved standard name.
type Match struct {
	Category   string
	Standard   string
	Confidence float64
}

// Config holds the partial-match discounts.
type Config struct {
	// ContainedDiscount scales matches where the term is part of a synonym.
	ContainedDiscount float64 `mapstructure:"contained_discount" validate:"gt=0,lte=1"`
	// ContainingDiscount scales matches where a synonym is part of the term.
	ContainingDiscount float64 `mapstructure:"containing_discount" validate:"gt=0,lte=1"`
	// SimilarityFloor is the minimum character-set similarity for FindSimilar.
	SimilarityFloor float64 `mapstructure:"similarity_floor" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the standard discounts.
func DefaultConfig() Config {
	return Config{
		ContainedDiscount:  0.8,
		ContainingDiscount: 0.7,
		SimilarityFloor:    0.3,
	}
}

// Expander resolves and expands ingredient terms against a Dictionary.
type Expander struct {
	dict   *Dictionary
	config Config
	logger *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "synonym")
		return nil
	}
}

// WithConfig overrides the default discounts.
func WithConfig(config Config) Option {
	return func(e *Expander) error {
		e.config = config
		return nil
	}
}

// NewExpander creates an expander over dict.
func NewExpander(dict *Dictionary, opts ...Option) (*Expander, error) {
	if dict == nil {
		return nil, ErrDictionaryRequired
	}
	e := &Expander{
		dict:   dict,
		config: DefaultConfig(),
		logger: slog.Default().With("component", "synonym"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Categories returns the dictionary categories.
func (e *Expander) Categories() []string {
	return e.dict.Categories()
}

// FindStandard resolves term to its standard name. An exact match on any
// name has confidence 1.0. Otherwise the best containment match wins: the
// term inside a synonym scores len(term)/len(synonym) × ContainedDiscount and
// a synonym inside the term scores len(synonym)/len(term) × ContainingDiscount.
// Ties keep the earlier dictionary entry.
func (e *Expander) FindStandard(term string) (Match, bool) {
	idx, confidence := e.resolve(text.Fold(term))
	if idx < 0 {
		return Match{}, false
	}
	return e.match(idx, confidence), true
}

// resolve returns the entry index for a folded term, or -1.
func (e *Expander) resolve(folded string) (int, float64) {
	if folded == "" {
		return -1, 0
	}
	if idx, ok := e.dict.reverse[folded]; ok {
		return idx, 1.0
	}

	termLen := utf8.RuneCountInString(folded)
	best, bestScore := -1, 0.0
	for _, ref := range e.dict.names {
		var score float64
		switch {
		case strings.Contains(ref.folded, folded):
			score = float64(termLen) / float64(utf8.RuneCountInString(ref.folded)) * e.config.ContainedDiscount
		case strings.Contains(folded, ref.folded):
			score = float64(utf8.RuneCountInString(ref.folded)) / float64(termLen) * e.config.ContainingDiscount
		default:
			continue
		}
		if score > bestScore {
			best, bestScore = ref.entry, score
		}
	}
	return best, bestScore
}

// Expand returns term followed by the standard name and every synonym of
// the entry it resolves to, without duplicates. An unresolved term expands
// to itself.
func (e *Expander) Expand(term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	out := []string{term}
	folded := text.Fold(term)
	idx, confidence := e.resolve(folded)
	if idx < 0 {
		return out
	}
	seen := map[string]bool{folded: true}
	entry := e.dict.entries[idx]
	for _, name := range append([]string{entry.Standard}, entry.Synonyms...) {
		f := text.Fold(name)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, name)
	}
	e.logger.Debug("expanded term", "term", term, "standard", entry.Standard, "confidence", confidence, "expansions", len(out)-1)
	return out
}

// FindSimilar returns up to limit standard names whose names share enough
// characters with term, by Jaccard similarity of the character sets.
// Results are ordered by similarity, then dictionary order.
func (e *Expander) FindSimilar(term string, limit int) []Match {
	folded := text.Fold(term)
	if folded == "" || limit <= 0 {
		return nil
	}
	termChars := charSet(folded)
	best := make(map[int]float64)
	order := make([]int, 0)
	for _, ref := range e.dict.names {
		sim := jaccard(termChars, charSet(ref.folded))
		if sim <= e.config.SimilarityFloor {
			continue
		}
		prev, seen := best[ref.entry]
		if !seen {
			order = append(order, ref.entry)
		}
		if !seen || sim > prev {
			best[ref.entry] = sim
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return best[order[i]] > best[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	out := make([]Match, 0, len(order))
	for _, idx := range order {
		out = append(out, e.match(idx, best[idx]))
	}
	return out
}

func (e *Expander) match(idx int, confidence float64) Match {
	entry := e.dict.entries[idx]
	return Match{Category: entry.Category, Standard: entry.Standard, Confidence: confidence}
}

func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func jaccard(a, b map[rune]struct{}) float64 {
	inter := 0
	for r := range a {
		if _, ok := b[r]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
