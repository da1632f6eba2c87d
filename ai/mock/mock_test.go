package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recipesearch/ai"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "김치찌개")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "김치찌개")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "된장찌개")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, DefaultDimension)
	assert.Equal(t, 3, m.CallCount())

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_CustomFunc(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	})

	_, err := m.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	_, err = m.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Zero(t, m.CallCount())
	vecs, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestMockJudge_DefaultScores(t *testing.T) {
	j := NewMockJudge()
	verdict, err := j.ScoreBatch(context.Background(), "김치찌개", []ai.JudgeItem{
		{Name: "김치찌개"},
		{Name: "참치 김치찌개"},
		{Name: "불고기"},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{90, 90, 0}, verdict.Scores)
	assert.False(t, verdict.HasSuggestion())
	assert.Equal(t, 1, j.CallCount())
	assert.Equal(t, []string{"김치찌개"}, j.Queries())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp := p.(*MockProvider)

	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.Same(t, mp.GetMockJudge(), p.Judge())
	require.NoError(t, p.Close())
	assert.True(t, mp.Closed())
}
