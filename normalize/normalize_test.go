package normalize

import (
	"math"
	"testing"

	"github.com/poiesic/recipesearch/core"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := New(DefaultConfig())

	tests := []struct {
		name   string
		raw    float64
		source core.SourceKind
		want   float64
	}{
		{"vector in range", 0.8234, core.SourceVector, 82.34},
		{"vector above one is clamped", 1.37, core.SourceVector, 100},
		{"vector negative", -0.2, core.SourceVector, 0},
		{"lexical mid", 12, core.SourceLexical, 24},
		{"lexical above ceiling", 75, core.SourceLexical, 100},
		{"lexical negative", -3, core.SourceLexical, 0},
		{"synonym uses lexical scale", 25, core.SourceSynonym, 50},
		{"ai passthrough", 72.456, core.SourceAI, 72.46},
		{"ai clamped", 130, core.SourceAI, 100},
		{"unknown source", 10, core.SourceKind(0), 0},
		{"nan", math.NaN(), core.SourceVector, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, n.Normalize(tt.raw, tt.source), 1e-9)
		})
	}
}

func TestNormalize_Monotonic(t *testing.T) {
	n := New(DefaultConfig())
	sources := []core.SourceKind{core.SourceLexical, core.SourceVector, core.SourceSynonym, core.SourceAI}

	for _, source := range sources {
		t.Run(source.String(), func(t *testing.T) {
			prev := n.Normalize(-10, source)
			for raw := -10.0; raw <= 150; raw += 0.37 {
				got := n.Normalize(raw, source)
				assert.GreaterOrEqual(t, got, prev, "raw=%v", raw)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 100.0)
				prev = got
			}
		})
	}
}

func TestHybrid(t *testing.T) {
	n := New(DefaultConfig())
	assert.InDelta(t, 76.0, n.Hybrid(80, 70), 1e-9)
	assert.InDelta(t, 60.0, n.Hybrid(100, 0), 1e-9)

	custom := New(Config{VectorWeight: 1, TextWeight: 1})
	assert.InDelta(t, 75.0, custom.Hybrid(100, 50), 1e-9)
}

func TestNew_FallsBackToDefaults(t *testing.T) {
	n := New(Config{})
	assert.InDelta(t, 24.0, n.Normalize(12, core.SourceLexical), 1e-9)
	assert.InDelta(t, 76.0, n.Hybrid(80, 70), 1e-9)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.234))
	assert.Equal(t, 1.24, Round(1.235000001))
	assert.Equal(t, 100.0, Clamp100(140))
	assert.Equal(t, 0.0, Clamp100(-1))
}
