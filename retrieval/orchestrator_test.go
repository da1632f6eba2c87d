package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recipesearch/ai/mock"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/synonym"
)

type fakeLexical struct {
	mu      sync.Mutex
	results map[string][]*core.CandidateResult
	err     error
	block   bool
	queries []string
}

func (f *fakeLexical) SearchByText(ctx context.Context, _ core.EntityKind, query string, limit int) ([]*core.CandidateResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []*core.CandidateResult
	for _, r := range f.results[query] {
		copied := *r
		out = append(out, &copied)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLexical) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeVector struct {
	results   []*core.CandidateResult
	err       error
	lastLimit int
	calls     int
}

func (f *fakeVector) SearchByVector(_ context.Context, _ core.EntityKind, _ []float32, limit int) ([]*core.CandidateResult, error) {
	f.calls++
	f.lastLimit = limit
	return f.results, f.err
}

func recipe(id core.ID, name, ingredients string) *core.Entity {
	return &core.Entity{Id: id, Kind: core.EntityKindRecipe, Name: name, IngredientsText: ingredients}
}

func hits(n int) []*core.CandidateResult {
	out := make([]*core.CandidateResult, n)
	for i := range out {
		out[i] = &core.CandidateResult{Entity: recipe(core.ID(i+1), "김치찌개", "김치"), RawScore: 10}
	}
	return out
}

func newTestOrchestrator(t *testing.T, lexical *fakeLexical, vector *fakeVector, embedder *mock.MockEmbedder, config *Config) *Orchestrator {
	t.Helper()
	dict, err := synonym.Default()
	require.NoError(t, err)
	expander, err := synonym.NewExpander(dict)
	require.NoError(t, err)

	var opts []Option
	if vector != nil {
		opts = append(opts, WithVectorSearch(vector, embedder))
	}
	if config != nil {
		opts = append(opts, WithConfig(*config))
	}
	o, err := NewOrchestrator(lexical, expander, opts...)
	require.NoError(t, err)
	return o
}

func query(text string) core.CorrectedQuery {
	return core.CorrectedQuery{Query: core.Query{Text: text, Scope: core.ScopeRecipe, Limit: 10}}
}

func TestNewOrchestrator_Requirements(t *testing.T) {
	dict, err := synonym.Default()
	require.NoError(t, err)
	expander, err := synonym.NewExpander(dict)
	require.NoError(t, err)

	_, err = NewOrchestrator(nil, expander)
	assert.ErrorIs(t, err, ErrLexicalSearcherRequired)

	_, err = NewOrchestrator(&fakeLexical{}, nil)
	assert.ErrorIs(t, err, ErrExpanderRequired)

	_, err = NewOrchestrator(&fakeLexical{}, expander, WithVectorSearch(&fakeVector{}, nil))
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestRetrieve_SkipsVectorWithEnoughLexicalHits(t *testing.T) {
	lexical := &fakeLexical{results: map[string][]*core.CandidateResult{"찌개": hits(9)}}
	vector := &fakeVector{}
	embedder := mock.NewMockEmbedder()
	o := newTestOrchestrator(t, lexical, vector, embedder, nil)

	got := o.Retrieve(context.Background(), query("찌개"), core.EntityKindRecipe, 10)
	assert.Len(t, got.Lexical, 9)
	assert.Empty(t, got.Vector)
	assert.Zero(t, embedder.CallCount())
	for _, c := range got.Lexical {
		assert.Equal(t, core.SourceLexical, c.Source)
	}
}

func TestRetrieve_SemanticQueryRunsVectorWithDoubledLimit(t *testing.T) {
	lexical := &fakeLexical{}
	vector := &fakeVector{results: []*core.CandidateResult{
		{Entity: recipe(7, "얼큰한 육개장", "소고기, 고사리"), RawScore: 0.81},
	}}
	embedder := mock.NewMockEmbedder()
	o := newTestOrchestrator(t, lexical, vector, embedder, nil)

	got := o.Retrieve(context.Background(), query("따뜻한 국물"), core.EntityKindRecipe, 10)
	require.Len(t, got.Vector, 1)
	assert.Equal(t, core.SourceVector, got.Vector[0].Source)
	assert.Equal(t, 20, vector.lastLimit)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestRetrieve_SpecificTermSkipsVector(t *testing.T) {
	lexical := &fakeLexical{results: map[string][]*core.CandidateResult{"라면": hits(1)}}
	vector := &fakeVector{}
	o := newTestOrchestrator(t, lexical, vector, mock.NewMockEmbedder(), nil)

	got := o.Retrieve(context.Background(), query("라면"), core.EntityKindRecipe, 10)
	assert.Len(t, got.Lexical, 1)
	assert.Zero(t, vector.calls)
}

func TestRetrieve_LexicalFailureDegrades(t *testing.T) {
	lexical := &fakeLexical{err: errors.New("index unavailable")}
	vector := &fakeVector{results: []*core.CandidateResult{
		{Entity: recipe(3, "곤드레밥", "곤드레"), RawScore: 0.9},
	}}
	o := newTestOrchestrator(t, lexical, vector, mock.NewMockEmbedder(), nil)

	got := o.Retrieve(context.Background(), query("곤드레밥"), core.EntityKindRecipe, 10)
	assert.Empty(t, got.Lexical)
	assert.Empty(t, got.Synonym)
	assert.Len(t, got.Vector, 1)
}

func TestRetrieve_EmbedderFailureDegrades(t *testing.T) {
	lexical := &fakeLexical{results: map[string][]*core.CandidateResult{"곤드레밥": hits(1)}}
	vector := &fakeVector{}
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	})
	o := newTestOrchestrator(t, lexical, vector, embedder, nil)

	got := o.Retrieve(context.Background(), query("곤드레밥"), core.EntityKindRecipe, 10)
	assert.Len(t, got.Lexical, 1)
	assert.Empty(t, got.Vector)
	assert.Zero(t, vector.calls)
}

func TestRetrieve_SynonymExpansion(t *testing.T) {
	lexical := &fakeLexical{results: map[string][]*core.CandidateResult{
		"파프리카": {
			{Entity: recipe(1, "파프리카 볶음", "파프리카, 양파"), RawScore: 12},
			{Entity: recipe(2, "잡채", "당면, 시금치"), RawScore: 3},
		},
		"청피망": {
			{Entity: recipe(1, "파프리카 볶음", "파프리카, 양파, 청피망"), RawScore: 4},
			{Entity: recipe(5, "고추잡채", "청피망, 돼지고기"), RawScore: 8},
		},
	}}
	o := newTestOrchestrator(t, lexical, &fakeVector{}, mock.NewMockEmbedder(), nil)

	got := o.Retrieve(context.Background(), query("피망 요리"), core.EntityKindRecipe, 10)

	require.Len(t, got.Synonym, 2)
	assert.Equal(t, core.ID(1), got.Synonym[0].Entity.Id)
	assert.Equal(t, "파프리카", got.Synonym[0].Term)
	assert.Equal(t, 12.0, got.Synonym[0].RawScore)
	assert.Equal(t, core.SourceSynonym, got.Synonym[0].Source)
	assert.Equal(t, core.ID(5), got.Synonym[1].Entity.Id)
	assert.Equal(t, "청피망", got.Synonym[1].Term)

	// Stop words are dropped from the lexical query
	assert.Contains(t, lexical.seen(), "피망")
	assert.NotContains(t, lexical.seen(), "피망 요리")
}

func TestRetrieve_NoSynonymsWithoutIngredientIntent(t *testing.T) {
	lexical := &fakeLexical{results: map[string][]*core.CandidateResult{
		"돼지고기 김치찌개": {{Entity: recipe(1, "김치찌개", "김치, 돼지고기"), RawScore: 20}},
		"목살":        {{Entity: recipe(2, "목살 스테이크", "목살"), RawScore: 30}},
		"돈육":        {{Entity: recipe(3, "돈육 장조림", "돈육, 간장"), RawScore: 35}},
	}}
	o := newTestOrchestrator(t, lexical, &fakeVector{}, mock.NewMockEmbedder(), nil)

	got := o.Retrieve(context.Background(), query("돼지고기 김치찌개"), core.EntityKindRecipe, 10)
	assert.Empty(t, got.Synonym)
	assert.Equal(t, []string{"돼지고기 김치찌개"}, lexical.seen())
	require.Len(t, got.Lexical, 1)
	assert.Equal(t, core.ID(1), got.Lexical[0].Entity.Id)
}

func TestRetrieve_TimeoutDegrades(t *testing.T) {
	lexical := &fakeLexical{block: true}
	config := DefaultConfig()
	config.LexicalTimeout = 20 * time.Millisecond
	o := newTestOrchestrator(t, lexical, nil, nil, &config)

	start := time.Now()
	got := o.Retrieve(context.Background(), query("피망"), core.EntityKindRecipe, 10)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, got.Count())
}

func TestRetrieve_WithoutVectorSearch(t *testing.T) {
	dict, err := synonym.Default()
	require.NoError(t, err)
	expander, err := synonym.NewExpander(dict)
	require.NoError(t, err)
	o, err := NewOrchestrator(&fakeLexical{}, expander)
	require.NoError(t, err)

	got := o.Retrieve(context.Background(), query("따뜻한 국물"), core.EntityKindRecipe, 10)
	assert.Empty(t, got.Vector)
}
