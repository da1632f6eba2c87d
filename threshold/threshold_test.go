package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	tests := []struct {
		name        string
		query       string
		count       int
		suggestions []float64
		want        float64
	}{
		{"single word many results", "라면", 12, nil, 0.8},
		{"single word some results", "라면", 6, nil, 0.7},
		{"two words one result", "매운 라면", 1, nil, 0.5},
		{"no results long query", "따뜻하고 간단한 저녁 메뉴 추천 해줘", 0, nil, 0.2},
		{"no results two words", "건강한 간식", 0, nil, 0.3},
		{"ai suggestions raise", "매운 라면", 1, []float64{0.9, 0.7}, 0.59},
		{"ai suggestions lower", "매운 라면", 1, []float64{0.1}, 0.38},
		{"clamped high", "라면", 20, []float64{1.0}, 0.8},
		{"non-finite suggestions ignored", "매운 라면", 1, []float64{math.NaN(), math.Inf(1), math.Inf(-1)}, 0.5},
		{"out of range suggestions ignored", "매운 라면", 1, []float64{-0.4, 65, 0.9, 0.7}, 0.59},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := calc.Calculate(tt.query, tt.count, tt.suggestions)
			assert.InDelta(t, tt.want, d.Value, 1e-9)
			assert.GreaterOrEqual(t, d.Value, 0.2)
			assert.LessOrEqual(t, d.Value, 0.8)
		})
	}
}

func TestCalculate_LenientWithoutEvidence(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	d := calc.Calculate("집에서 만드는 따뜻한 국물 요리 추천", 0, nil)
	assert.LessOrEqual(t, d.Value, 0.4)
	assert.Equal(t, -0.2, d.CountAdjustment)
	assert.Equal(t, -0.1, d.LengthAdjustment)
}

func TestCalculate_NonFiniteSuggestion(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	d := calc.Calculate("라면", 3, []float64{math.NaN()})
	assert.False(t, math.IsNaN(d.Value))
	assert.Zero(t, d.AIAdjustment)
	assert.InDelta(t, 0.6, d.Value, 1e-9)
}
