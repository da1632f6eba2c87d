package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.True(t, cfg.Rerank.Enabled)
	assert.Equal(t, 5, cfg.Rerank.BatchSize)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.InDelta(t, 0.5, cfg.Threshold.Base, 1e-9)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }},
		{"postgres without url", func(c *Config) { c.Storage.Backend = BackendPostgres }},
		{"badger without path", func(c *Config) { c.Storage.Path = "" }},
		{"default limit above max", func(c *Config) { c.Search.DefaultLimit = 100 }},
		{"threshold min above max", func(c *Config) { c.Threshold.Min = 0.9 }},
		{"zero rerank batch", func(c *Config) { c.Rerank.BatchSize = 0 }},
		{"synonym discount above one", func(c *Config) { c.Synonyms.ContainedDiscount = 1.5 }},
		{"missing embedding model", func(c *Config) { c.AI.EmbeddingModel = "" }},
		{"zero ingestion workers", func(c *Config) { c.Ingestion.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidate_NormalizesAIHosts(t *testing.T) {
	cfg := Default()
	cfg.AI.EmbeddingHost = "http://embed:8080"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://embed:8080/v1", cfg.AI.EmbeddingHost)
}

func TestLoad_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Search, cfg.Search)
	assert.Equal(t, Default().Fusion.CategoryRules, cfg.Fusion.CategoryRules)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "recipesearch.yaml", `
ai:
  judge_model: gpt-4o-mini
  judge_temperature: 0.1
storage:
  backend: postgres
  postgres_url: postgres://localhost/recipes
  dimensions: 1536
rerank:
  enabled: false
  min_score: 70
retrieval:
  vector_timeout: 2s
  ingredient_markers: [재료, 레시피]
fusion:
  category_rules:
    soup: [국, 탕]
search:
  max_limit: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.AI.JudgeModel)
	assert.InDelta(t, 0.1, cfg.AI.JudgeTemperature, 1e-9)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://localhost/recipes", cfg.Storage.PostgresURL)
	assert.Equal(t, 1536, cfg.Storage.Dimensions)
	assert.False(t, cfg.Rerank.Enabled)
	assert.InDelta(t, 70.0, cfg.Rerank.MinScore, 1e-9)
	assert.Equal(t, 5, cfg.Rerank.BatchSize, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Retrieval.VectorTimeout)
	assert.Equal(t, []string{"재료", "레시피"}, cfg.Retrieval.IngredientMarkers)
	assert.Equal(t, map[string][]string{"soup": {"국", "탕"}}, cfg.Fusion.CategoryRules)
	assert.Equal(t, 20, cfg.Search.MaxLimit)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "recipesearch.yaml", "search:\n  max_limit: 20\n")

	t.Setenv("RECIPESEARCH_SEARCH_MAX_LIMIT", "30")
	t.Setenv("RECIPESEARCH_RERANK_ENABLED", "false")
	t.Setenv("RECIPESEARCH_RETRIEVAL_INGREDIENT_MARKERS", "재료,만들기")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Search.MaxLimit)
	assert.False(t, cfg.Rerank.Enabled)
	assert.Equal(t, []string{"재료", "만들기"}, cfg.Retrieval.IngredientMarkers)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "RECIPESEARCH_AI_JUDGE_MODEL=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("RECIPESEARCH_AI_JUDGE_MODEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AI.JudgeModel)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, dir, "bad.yaml", "search:\n  max_limit: 0\n")
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
