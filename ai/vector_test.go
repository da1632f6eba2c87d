package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{"unit vector remains unchanged", []float32{1.0, 0.0, 0.0}, []float32{1.0, 0.0, 0.0}},
		{"scale non-unit vector", []float32{3.0, 4.0}, []float32{0.6, 0.8}},
		{"negative values", []float32{-1.0, 1.0}, []float32{-1.0 / float32(math.Sqrt(2)), 1.0 / float32(math.Sqrt(2))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			require.Equal(t, len(tt.expected), len(result), "vector length mismatch")

			var magnitude float64
			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
				magnitude += float64(result[i]) * float64(result[i])
			}
			assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-6)
		})
	}
}

func TestNormalizeVector_ZeroAndEmpty(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, NormalizeVector([]float32{0, 0}))
	assert.Empty(t, NormalizeVector(nil))
}

func TestNormalizeVector_DoesNotMutateInput(t *testing.T) {
	in := []float32{3, 4}
	NormalizeVector(in)
	assert.Equal(t, []float32{3, 4}, in)
}
