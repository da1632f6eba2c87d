package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/recipesearch/core"
)

func kimchiStew() *core.Entity {
	return &core.Entity{
		Id:              1,
		Kind:            core.EntityKindRecipe,
		Name:            "김치찌개",
		IngredientsText: "김치, 돼지고기, 두부, 대파",
		Tags:            []string{"찌개", "한식"},
	}
}

func TestLexicalScore(t *testing.T) {
	e := kimchiStew()

	tests := []struct {
		name  string
		query string
		want  float64
	}{
		// name exact 3 + phrase 6, ingredient 김치 partial 1.5, tag 찌개 partial 0.75
		{"exact name", "김치찌개", 11.25},
		// name fuzzy 1.5, ingredient 김치 partial 1.5
		{"one typo", "김치지개", 3.0},
		// ingredient exact 2
		{"ingredient", "두부", 2.0},
		{"no match", "파스타", 0},
		{"empty", "  ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LexicalScore(tt.query, e), 1e-9)
		})
	}
}

func TestLexicalScore_Ingredient(t *testing.T) {
	e := &core.Entity{Id: 2, Kind: core.EntityKindIngredient, Name: "피망", Aliases: []string{"파프리카", "청피망"}}

	// name exact 2 + phrase 4, alias 청피망 partial 0.75
	assert.InDelta(t, 6.75, LexicalScore("피망", e), 1e-9)
	// alias exact 1
	assert.InDelta(t, 1.0, LexicalScore("파프리카", e), 1e-9)
}

func TestLexicalScore_ExactOutranksPartial(t *testing.T) {
	exact := kimchiStew()
	partial := &core.Entity{Id: 3, Kind: core.EntityKindRecipe, Name: "김치볶음밥", IngredientsText: "김치, 밥"}
	assert.Greater(t, LexicalScore("김치찌개", exact), LexicalScore("김치찌개", partial))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"김치", "돼지고기", "두부"}, Tokenize("김치, 돼지고기;두부"))
	assert.Equal(t, []string{"a", "b"}, Tokenize(" A|b "))
	assert.Empty(t, Tokenize(""))
}

func TestSortCandidates(t *testing.T) {
	results := []*core.CandidateResult{
		{Entity: &core.Entity{Id: 3}, RawScore: 1},
		{Entity: &core.Entity{Id: 2}, RawScore: 5},
		{Entity: &core.Entity{Id: 1}, RawScore: 1},
	}
	SortCandidates(results)
	assert.Equal(t, core.ID(2), results[0].Entity.Id)
	assert.Equal(t, core.ID(1), results[1].Entity.Id)
	assert.Equal(t, core.ID(3), results[2].Entity.Id)
}
