package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "RECIPESEARCH"

// Load reads the configuration file at path, if path is non-empty, then
// applies environment overrides and validates the result. Keys that are
// absent everywhere keep their defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	l := loader{v}
	c := Default()

	c.AI.EmbeddingHost = l.getString("ai.embedding_host", c.AI.EmbeddingHost)
	c.AI.JudgeHost = l.getString("ai.judge_host", c.AI.JudgeHost)
	c.AI.EmbeddingModel = l.getString("ai.embedding_model", c.AI.EmbeddingModel)
	c.AI.JudgeModel = l.getString("ai.judge_model", c.AI.JudgeModel)
	c.AI.APIKey = l.getString("ai.api_key", c.AI.APIKey)
	c.AI.JudgeTemperature = l.getFloat64("ai.judge_temperature", c.AI.JudgeTemperature)
	c.AI.EmbedMaxAttempts = l.getInt("ai.embed_max_attempts", c.AI.EmbedMaxAttempts)
	c.AI.EmbedBaseDelay = l.getDuration("ai.embed_base_delay", c.AI.EmbedBaseDelay)

	c.Storage.Backend = l.getString("storage.backend", c.Storage.Backend)
	c.Storage.Path = l.getString("storage.path", c.Storage.Path)
	c.Storage.PostgresURL = l.getString("storage.postgres_url", c.Storage.PostgresURL)
	c.Storage.Dimensions = l.getInt("storage.dimensions", c.Storage.Dimensions)

	c.Synonyms.Path = l.getString("synonyms.path", c.Synonyms.Path)
	c.Synonyms.ContainedDiscount = l.getFloat64("synonyms.contained_discount", c.Synonyms.ContainedDiscount)
	c.Synonyms.ContainingDiscount = l.getFloat64("synonyms.containing_discount", c.Synonyms.ContainingDiscount)
	c.Synonyms.SimilarityFloor = l.getFloat64("synonyms.similarity_floor", c.Synonyms.SimilarityFloor)

	c.Repair.AcceptScore = l.getFloat64("repair.accept_score", c.Repair.AcceptScore)
	c.Repair.AcceptSimilarity = l.getFloat64("repair.accept_similarity", c.Repair.AcceptSimilarity)
	c.Repair.CandidateSimilarity = l.getFloat64("repair.candidate_similarity", c.Repair.CandidateSimilarity)
	c.Repair.LookupLimit = l.getInt("repair.lookup_limit", c.Repair.LookupLimit)
	c.Repair.MaxSuggestions = l.getInt("repair.max_suggestions", c.Repair.MaxSuggestions)
	c.Repair.CacheSize = l.getInt("repair.cache_size", c.Repair.CacheSize)

	r := &c.Retrieval
	r.LexicalTimeout = l.getDuration("retrieval.lexical_timeout", r.LexicalTimeout)
	r.VectorTimeout = l.getDuration("retrieval.vector_timeout", r.VectorTimeout)
	r.VectorLimitFactor = l.getInt("retrieval.vector_limit_factor", r.VectorLimitFactor)
	r.MaxExpansions = l.getInt("retrieval.max_expansions", r.MaxExpansions)
	r.SynonymConcurrency = l.getInt("retrieval.synonym_concurrency", r.SynonymConcurrency)
	r.IngredientMarkers = l.getStringSlice("retrieval.ingredient_markers", r.IngredientMarkers)
	r.Policy.SkipAtCount = l.getInt("retrieval.vector_policy.skip_at_count", r.Policy.SkipAtCount)
	r.Policy.ForceBelowCount = l.getInt("retrieval.vector_policy.force_below_count", r.Policy.ForceBelowCount)
	r.Policy.SpecificTerms = l.getStringSlice("retrieval.vector_policy.specific_terms", r.Policy.SpecificTerms)
	r.Policy.SemanticTerms = l.getStringSlice("retrieval.vector_policy.semantic_terms", r.Policy.SemanticTerms)

	c.Normalize.LexicalCeiling = l.getFloat64("normalize.lexical_ceiling", c.Normalize.LexicalCeiling)
	c.Normalize.VectorWeight = l.getFloat64("normalize.vector_weight", c.Normalize.VectorWeight)
	c.Normalize.TextWeight = l.getFloat64("normalize.text_weight", c.Normalize.TextWeight)

	f := &c.Fusion
	f.ExactNameBonus = l.getFloat64("fusion.exact_name_bonus", f.ExactNameBonus)
	f.NameContainsBonus = l.getFloat64("fusion.name_contains_bonus", f.NameContainsBonus)
	f.IngredientsMatchBonus = l.getFloat64("fusion.ingredients_match_bonus", f.IngredientsMatchBonus)
	f.WordOverlapBonusWeight = l.getFloat64("fusion.word_overlap_bonus_weight", f.WordOverlapBonusWeight)
	f.IngredientExactBonus = l.getFloat64("fusion.ingredient_exact_bonus", f.IngredientExactBonus)
	f.IngredientPartialBonus = l.getFloat64("fusion.ingredient_partial_bonus", f.IngredientPartialBonus)
	f.AliasMatchBonus = l.getFloat64("fusion.alias_match_bonus", f.AliasMatchBonus)
	f.SynonymDiscount = l.getFloat64("fusion.synonym_discount", f.SynonymDiscount)
	f.VectorWeight = l.getFloat64("fusion.vector_weight", f.VectorWeight)
	f.MinOverlapFactor = l.getFloat64("fusion.min_overlap_factor", f.MinOverlapFactor)
	f.CategoryFactor = l.getFloat64("fusion.category_factor", f.CategoryFactor)
	f.UnrelatedFactor = l.getFloat64("fusion.unrelated_factor", f.UnrelatedFactor)
	f.VerificationFloor = l.getFloat64("fusion.verification_floor", f.VerificationFloor)
	f.CategoryRules = l.getStringMap("fusion.category_rules", f.CategoryRules)

	rr := &c.Rerank
	rr.Enabled = l.getBool("rerank.enabled", rr.Enabled)
	rr.BatchSize = l.getInt("rerank.batch_size", rr.BatchSize)
	rr.MaxIngredients = l.getInt("rerank.max_ingredients", rr.MaxIngredients)
	rr.MinScore = l.getFloat64("rerank.min_score", rr.MinScore)
	rr.BatchTimeout = l.getDuration("rerank.batch_timeout", rr.BatchTimeout)
	rr.Workers = l.getInt("rerank.workers", rr.Workers)
	rr.ExactBonus = l.getFloat64("rerank.exact_bonus", rr.ExactBonus)
	rr.ContainsBonus = l.getFloat64("rerank.contains_bonus", rr.ContainsBonus)
	rr.ContainedBonus = l.getFloat64("rerank.contained_bonus", rr.ContainedBonus)
	rr.OverlapWeight = l.getFloat64("rerank.overlap_weight", rr.OverlapWeight)

	t := &c.Threshold
	t.Base = l.getFloat64("threshold.base", t.Base)
	t.Min = l.getFloat64("threshold.min", t.Min)
	t.Max = l.getFloat64("threshold.max", t.Max)
	t.HighCount = l.getInt("threshold.high_count", t.HighCount)
	t.HighCountBonus = l.getFloat64("threshold.high_count_bonus", t.HighCountBonus)
	t.MidCount = l.getInt("threshold.mid_count", t.MidCount)
	t.MidCountBonus = l.getFloat64("threshold.mid_count_bonus", t.MidCountBonus)
	t.EmptyPenalty = l.getFloat64("threshold.empty_penalty", t.EmptyPenalty)
	t.LongQueryWords = l.getInt("threshold.long_query_words", t.LongQueryWords)
	t.LongQueryAdjustment = l.getFloat64("threshold.long_query_adjustment", t.LongQueryAdjustment)
	t.SingleWordAdjustment = l.getFloat64("threshold.single_word_adjustment", t.SingleWordAdjustment)
	t.AIWeight = l.getFloat64("threshold.ai_weight", t.AIWeight)

	c.Search.DefaultLimit = l.getInt("search.default_limit", c.Search.DefaultLimit)
	c.Search.MaxLimit = l.getInt("search.max_limit", c.Search.MaxLimit)
	c.Search.VectorGateRatio = l.getFloat64("search.vector_gate_ratio", c.Search.VectorGateRatio)

	c.Ingestion.Workers = l.getInt("ingestion.workers", c.Ingestion.Workers)
	c.Ingestion.BatchSize = l.getInt("ingestion.batch_size", c.Ingestion.BatchSize)
	c.Ingestion.MaxAttempts = l.getInt("ingestion.max_attempts", c.Ingestion.MaxAttempts)
	c.Ingestion.RetryDelay = l.getDuration("ingestion.retry_delay", c.Ingestion.RetryDelay)

	return c
}

// loader reads single keys from viper, falling back to a default when the
// key is set nowhere.
type loader struct {
	v *viper.Viper
}

func (l loader) getString(key, def string) string {
	if l.v.IsSet(key) {
		return l.v.GetString(key)
	}
	return def
}

func (l loader) getFloat64(key string, def float64) float64 {
	if l.v.IsSet(key) {
		return l.v.GetFloat64(key)
	}
	return def
}

func (l loader) getInt(key string, def int) int {
	if l.v.IsSet(key) {
		return l.v.GetInt(key)
	}
	return def
}

func (l loader) getBool(key string, def bool) bool {
	if l.v.IsSet(key) {
		return l.v.GetBool(key)
	}
	return def
}

func (l loader) getDuration(key string, def time.Duration) time.Duration {
	if l.v.IsSet(key) {
		return l.v.GetDuration(key)
	}
	return def
}

// getStringSlice accepts a list in a config file or a comma or space separated
// environment value.
func (l loader) getStringSlice(key string, def []string) []string {
	if !l.v.IsSet(key) {
		return def
	}
	var out []string
	for _, s := range l.v.GetStringSlice(key) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (l loader) getStringMap(key string, def map[string][]string) map[string][]string {
	if l.v.IsSet(key) {
		return l.v.GetStringMapStringSlice(key)
	}
	return def
}
