package recipesearch

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recipesearch/ai/mock"
	"github.com/poiesic/recipesearch/config"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/ingestion"
	"github.com/poiesic/recipesearch/storage/badger"
)

const engineSeed = `
recipes:
  - id: 1
    name: 김치찌개
    category: 찌개
    ingredients: 김치, 돼지고기, 두부
  - id: 2
    name: 된장찌개
    category: 찌개
    ingredients: 된장, 두부, 애호박
  - id: 3
    name: 감자볶음
    category: 반찬
    ingredients: 감자, 양파
ingredients:
  - id: 10
    name: 두부
    category: 콩류
`

func setupEngine(t *testing.T, cfg *config.Config) (*Engine, *mock.MockProvider) {
	t.Helper()
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	provider := mock.NewMockProvider().(*mock.MockProvider)
	engine, err := NewEngine(context.Background(), cfg, WithIndex(index), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	seed, err := ingestion.LoadSeed(strings.NewReader(engineSeed))
	require.NoError(t, err)
	indexer, err := engine.NewIndexer()
	require.NoError(t, err)
	defer indexer.Release()
	stats, err := indexer.IndexSeed(context.Background(), seed)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Indexed)

	return engine, provider
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Search.MaxLimit = 0

	engine, err := NewEngine(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Nil(t, engine)
}

func TestNewEngine_MissingDictionary(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	cfg := config.Default()
	cfg.Synonyms.Path = filepath.Join(t.TempDir(), "missing.yaml")

	_, err = NewEngine(context.Background(), cfg, WithIndex(index), WithProvider(mock.NewMockProvider()))
	assert.Error(t, err)
}

func TestNewEngine_OwnsConfiguredIndex(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "index")
	provider := mock.NewMockProvider().(*mock.MockProvider)

	engine, err := NewEngine(context.Background(), cfg, WithProvider(provider))
	require.NoError(t, err)
	require.NotNil(t, engine.Index())
	assert.NotNil(t, engine.Synonyms())

	require.NoError(t, engine.Close())
	assert.False(t, provider.Closed(), "caller-supplied provider stays open")

	_, err = engine.Index().Count(context.Background(), core.EntityKindRecipe)
	assert.Error(t, err, "engine-opened index is closed")
}

func TestEngine_Search(t *testing.T) {
	engine, provider := setupEngine(t, nil)

	resp, err := engine.Search(context.Background(), core.Query{Text: "김치찌개", Scope: core.ScopeRecipe, Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Recipes)
	assert.Empty(t, resp.Ingredients)
	assert.NotEmpty(t, resp.RequestID)

	top := resp.Recipes[0]
	assert.Equal(t, "김치찌개", top.Entity.Name)
	assert.True(t, top.HasSource(core.SourceLexical))
	assert.True(t, top.HasSource(core.SourceAI))
	assert.Greater(t, provider.GetMockJudge().CallCount(), 0)
}

func TestEngine_SearchWithoutRerank(t *testing.T) {
	cfg := config.Default()
	cfg.Rerank.Enabled = false
	engine, provider := setupEngine(t, cfg)

	resp, err := engine.Search(context.Background(), core.Query{Text: "두부", Scope: core.ScopeAll, Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Ingredients)
	assert.Equal(t, "두부", resp.Ingredients[0].Entity.Name)
	assert.Equal(t, 0, provider.GetMockJudge().CallCount())
	for _, r := range resp.Recipes {
		assert.False(t, r.HasSource(core.SourceAI))
	}
}

func TestEngine_Repair(t *testing.T) {
	engine, _ := setupEngine(t, nil)

	repaired := engine.Repair(context.Background(), "ㄱㅏㅁㅈㅏ볶음", "김치찌개")
	require.Len(t, repaired, 2)
	require.NotNil(t, repaired[0].Correction)
	assert.Equal(t, "감자볶음", repaired[0].Effective())
	assert.Nil(t, repaired[1].Correction)
}

func TestEngine_Synonyms(t *testing.T) {
	engine, _ := setupEngine(t, nil)

	match, ok := engine.Synonyms().FindStandard("돼지고기")
	require.True(t, ok)
	assert.NotEmpty(t, match.Standard)
	assert.NotEmpty(t, engine.Synonyms().Expand("돼지고기"))
}
