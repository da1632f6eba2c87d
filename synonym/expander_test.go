package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpander(t *testing.T) *Expander {
	t.Helper()
	d, err := Default()
	require.NoError(t, err)
	e, err := NewExpander(d)
	require.NoError(t, err)
	return e
}

func TestNewExpander_RequiresDictionary(t *testing.T) {
	_, err := NewExpander(nil)
	assert.ErrorIs(t, err, ErrDictionaryRequired)
}

func TestFindStandard(t *testing.T) {
	e := newTestExpander(t)

	tests := []struct {
		name       string
		term       string
		standard   string
		category   string
		confidence float64
	}{
		{"exact synonym", "박력분", "밀가루", "곡류", 1.0},
		{"exact standard", "닭고기", "닭고기", "육류", 1.0},
		{"surrounding whitespace", "  파프리카 ", "피망", "채소", 1.0},
		{"term inside synonym", "삼겹", "삼겹살", "육류", 2.0 / 3.0 * 0.8},
		{"synonym inside term", "시금치나물", "시금치", "채소", 3.0 / 5.0 * 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := e.FindStandard(tt.term)
			require.True(t, ok)
			assert.Equal(t, tt.standard, m.Standard)
			assert.Equal(t, tt.category, m.Category)
			assert.InDelta(t, tt.confidence, m.Confidence, 1e-9)
		})
	}

	_, ok := e.FindStandard("없는재료123")
	assert.False(t, ok)
	_, ok = e.FindStandard("   ")
	assert.False(t, ok)
}

func TestFindStandard_CaseInsensitive(t *testing.T) {
	d, err := Parse([]byte("- category: dairy\n  entries:\n    - standard: Cheese\n      synonyms: [Mozzarella]\n"))
	require.NoError(t, err)
	e, err := NewExpander(d)
	require.NoError(t, err)

	m, ok := e.FindStandard("MOZZARELLA")
	require.True(t, ok)
	assert.Equal(t, "Cheese", m.Standard)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestExpand(t *testing.T) {
	e := newTestExpander(t)

	assert.Equal(t, []string{"대패삼겹살", "삼겹살", "통삼겹살", "오겹살"}, e.Expand("대패삼겹살"))
	assert.Equal(t,
		[]string{"피망", "파프리카", "빨간피망", "노란피망", "초록피망", "빨간파프리카", "노란파프리카", "청피망", "홍피망"},
		e.Expand("피망"))
	assert.Equal(t, []string{"없는재료123"}, e.Expand("없는재료123"))
	assert.Nil(t, e.Expand(" "))
}

func TestExpand_OriginalFirstNoDuplicates(t *testing.T) {
	e := newTestExpander(t)
	got := e.Expand("후추가루")
	require.NotEmpty(t, got)
	assert.Equal(t, "후추가루", got[0])
	assert.Contains(t, got, "후추")

	seen := make(map[string]bool)
	for _, term := range got {
		assert.False(t, seen[term], "duplicate %q", term)
		seen[term] = true
	}
}

func TestFindSimilar(t *testing.T) {
	e := newTestExpander(t)

	got := e.FindSimilar("후추가루", 3)
	require.Len(t, got, 3)
	assert.Equal(t, "후추", got[0].Standard)
	assert.Equal(t, 1.0, got[0].Confidence)
	assert.Equal(t, "고춧가루", got[1].Standard)
	assert.InDelta(t, 0.6, got[1].Confidence, 1e-9)
	assert.Equal(t, "밀가루", got[2].Standard)

	assert.Nil(t, e.FindSimilar("후추", 0))
	assert.Empty(t, e.FindSimilar("xyz", 5))
}

func TestCategories(t *testing.T) {
	e := newTestExpander(t)
	cats := e.Categories()
	cats[0] = "mutated"
	assert.Equal(t, "채소", e.Categories()[0])
}
