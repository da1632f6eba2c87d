// Package normalize converts raw relevance scores from heterogeneous sources
// onto one 0-100 scale.
//
// The function is chosen by source kind, never by inspecting the magnitude of
// the score, so a lexical score of 0.9 and a vector score of 0.9 normalize
// differently.
package normalize

import (
	"math"

	"github.com/poiesic/recipesearch/core"
)

// Config holds the normalizer constants.
type Config struct {
	// LexicalCeiling is the raw lexical score treated as a perfect match.
	LexicalCeiling float64 `mapstructure:"lexical_ceiling" validate:"gt=0"`

	// VectorWeight and TextWeight weight the hybrid combination.
	VectorWeight float64 `mapstructure:"vector_weight" validate:"gte=0"`
	TextWeight   float64 `mapstructure:"text_weight" validate:"gte=0"`
}

// DefaultConfig returns the tuned defaults. Vector is favored because it
// captures intent that keyword search misses for abstract queries.
func DefaultConfig() Config {
	return Config{
		LexicalCeiling: 50,
		VectorWeight:   0.6,
		TextWeight:     0.4,
	}
}

// Normalizer rescales raw scores. It is immutable and safe for concurrent use.
type Normalizer struct {
	cfg Config
}

// New creates a Normalizer. Zero or negative settings fall back to defaults.
func New(cfg Config) *Normalizer {
	def := DefaultConfig()
	if cfg.LexicalCeiling <= 0 {
		cfg.LexicalCeiling = def.LexicalCeiling
	}
	if cfg.VectorWeight < 0 || cfg.TextWeight < 0 || cfg.VectorWeight+cfg.TextWeight == 0 {
		cfg.VectorWeight = def.VectorWeight
		cfg.TextWeight = def.TextWeight
	}
	return &Normalizer{cfg: cfg}
}

// Normalize maps a raw score from the given source onto [0,100].
func (n *Normalizer) Normalize(raw float64, source core.SourceKind) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	switch source {
	case core.SourceVector:
		// Similarity scripts can add offsets that push scores past 1.
		return Round(clamp(raw, 0, 1) * 100)
	case core.SourceLexical, core.SourceSynonym:
		return Round(clamp(raw/n.cfg.LexicalCeiling, 0, 1) * 100)
	case core.SourceAI:
		return Round(clamp(raw, 0, 100))
	default:
		return 0
	}
}

// Hybrid combines already-normalized vector and text scores.
func (n *Normalizer) Hybrid(vector, text float64) float64 {
	total := n.cfg.VectorWeight + n.cfg.TextWeight
	return Round((vector*n.cfg.VectorWeight + text*n.cfg.TextWeight) / total)
}

// Round rounds to 2 decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp100 limits a score to [0,100].
func Clamp100(v float64) float64 {
	return clamp(v, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
