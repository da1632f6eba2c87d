package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/storage"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	_, err = idx.PutEntities(context.Background(),
		&core.Entity{Id: 1, Kind: core.EntityKindRecipe, Name: "김치찌개", Category: "찌개",
			IngredientsText: "김치, 돼지고기, 두부", Vector: []float32{1, 0}},
		&core.Entity{Id: 2, Kind: core.EntityKindRecipe, Name: "김치볶음밥", Category: "밥",
			IngredientsText: "김치, 밥, 계란", Vector: []float32{0.6, 0.8}},
		&core.Entity{Id: 3, Kind: core.EntityKindRecipe, Name: "크림파스타", Category: "면",
			IngredientsText: "파스타면, 생크림", Vector: []float32{0, 1}},
		&core.Entity{Id: 4, Kind: core.EntityKindRecipe, Name: "된장국", Category: "국"},
		&core.Entity{Id: 10, Kind: core.EntityKindIngredient, Name: "피망",
			Aliases: []string{"파프리카"}, Vector: []float32{1, 0}},
	)
	require.NoError(t, err)
	return idx
}

func TestPutEntities_SetsIDsAndTimestamps(t *testing.T) {
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	defer idx.Close()
	ctx := context.Background()

	e := &core.Entity{Kind: core.EntityKindIngredient, Name: "양파"}
	out, err := idx.PutEntities(ctx, e)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, storage.EntityID(e), e.Id)
	assert.False(t, e.InsertedAt.IsZero())
	inserted := e.InsertedAt

	e.Aliases = []string{"적양파"}
	_, err = idx.PutEntities(ctx, e)
	require.NoError(t, err)

	got, err := idx.GetByID(ctx, core.EntityKindIngredient, e.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"적양파"}, got.Aliases)
	assert.True(t, got.InsertedAt.Equal(inserted))
	assert.False(t, got.UpdatedAt.Before(inserted))
}

func TestPutEntities_Invalid(t *testing.T) {
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.PutEntities(context.Background(), &core.Entity{Kind: core.EntityKindRecipe})
	assert.ErrorIs(t, err, core.ErrInvalidEntity)
}

func TestGetByID(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	got, err := idx.GetByID(ctx, core.EntityKindRecipe, 1)
	require.NoError(t, err)
	assert.Equal(t, "김치찌개", got.Name)

	_, err = idx.GetByID(ctx, core.EntityKindIngredient, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteEntities(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.DeleteEntities(ctx, core.EntityKindRecipe, 4))
	n, err := idx.Count(ctx, core.EntityKindRecipe)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	err = idx.DeleteEntities(ctx, core.EntityKindRecipe, 4)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCount(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	n, err := idx.Count(ctx, core.EntityKindRecipe)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = idx.Count(ctx, core.EntityKindIngredient)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSearchByText(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	results, err := idx.SearchByText(ctx, core.EntityKindRecipe, "김치찌개", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.ID(1), results[0].Entity.Id)
	assert.Equal(t, core.SourceLexical, results[0].Source)
	assert.Greater(t, results[0].RawScore, results[1].RawScore)

	results, err = idx.SearchByText(ctx, core.EntityKindRecipe, "김치", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = idx.SearchByText(ctx, core.EntityKindIngredient, "파프리카", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "피망", results[0].Entity.Name)

	results, err = idx.SearchByText(ctx, core.EntityKindRecipe, "햄버거", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = idx.SearchByText(ctx, core.EntityKindRecipe, "김치", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestSearchByVector(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	results, err := idx.SearchByVector(ctx, core.EntityKindRecipe, []float32{1, 0}, 10)
	require.NoError(t, err)
	// 된장국 has no embedding
	require.Len(t, results, 3)
	assert.Equal(t, core.ID(1), results[0].Entity.Id)
	assert.InDelta(t, 1.0, results[0].RawScore, 1e-6)
	assert.Equal(t, core.ID(2), results[1].Entity.Id)
	assert.InDelta(t, 0.6, results[1].RawScore, 1e-6)
	assert.Equal(t, core.SourceVector, results[1].Source)

	results, err = idx.SearchByVector(ctx, core.EntityKindRecipe, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = idx.SearchByVector(ctx, core.EntityKindRecipe, []float32{1, 0, 0}, 2)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestSearchByText_CanceledContext(t *testing.T) {
	idx := seedIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.SearchByText(ctx, core.EntityKindRecipe, "김치", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIndex_Persistent(t *testing.T) {
	dir := t.TempDir()
	idx, err := NewIndex(dir)
	require.NoError(t, err)
	_, err = idx.PutEntities(context.Background(), &core.Entity{Id: 7, Kind: core.EntityKindRecipe, Name: "잡채"})
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	idx, err = NewIndex(dir)
	require.NoError(t, err)
	defer idx.Close()
	got, err := idx.GetByID(context.Background(), core.EntityKindRecipe, 7)
	require.NoError(t, err)
	assert.Equal(t, "잡채", got.Name)
}

func TestNewIndexWithBackend(t *testing.T) {
	_, err := NewIndexWithBackend(nil)
	assert.Error(t, err)

	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()
	idx, err := NewIndexWithBackend(backend)
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	assert.False(t, backend.IsClosed())
}
