package storage

import (
	"context"

	"github.com/poiesic/recipesearch/core"
)

// LexicalSearcher runs keyword search over one entity kind.
// Results carry the raw lexical score and are ordered by score, then id.
type LexicalSearcher interface {
	SearchByText(ctx context.Context, kind core.EntityKind, query string, limit int) ([]*core.CandidateResult, error)
}

// VectorSearcher runs embedding similarity search over one entity kind.
// Raw scores are cosine similarities of unit vectors.
type VectorSearcher interface {
	SearchByVector(ctx context.Context, kind core.EntityKind, vector []float32, limit int) ([]*core.CandidateResult, error)
}

// EntityGetter reads entities by id.
type EntityGetter interface {
	// GetByID returns ErrNotFound if the entity doesn't exist.
	GetByID(ctx context.Context, kind core.EntityKind, id core.ID) (*core.Entity, error)
}

// EntityWriter stores entities.
type EntityWriter interface {
	// PutEntities inserts or replaces entities.
	// Entities with ID=0 get an id derived from their kind and name.
	// Sets InsertedAt on first insert and UpdatedAt on every write.
	PutEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error)

	// DeleteEntities removes entities by id.
	// Returns ErrNotFound if any entity doesn't exist.
	DeleteEntities(ctx context.Context, kind core.EntityKind, ids ...core.ID) error

	// Count returns the number of entities of one kind.
	Count(ctx context.Context, kind core.EntityKind) (int, error)
}

// Index is a complete recipe and ingredient index.
// Implementations must be safe for concurrent use.
type Index interface {
	LexicalSearcher
	VectorSearcher
	EntityGetter
	EntityWriter

	// Close releases the underlying store.
	Close() error
}

// EntityID returns the id used for an entity that has none.
func EntityID(e *core.Entity) core.ID {
	return core.IDFromContent(e.Kind.String() + ":" + e.Name)
}
