package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/storage"
)

// Index implements storage.Index for BadgerDB. Searches scan every entity
// of the requested kind, which suits catalogs of a few hundred thousand
// records.
type Index struct {
	backend *Backend
	owned   bool
	logger  *slog.Logger
}

var _ storage.Index = (*Index)(nil)

// NewIndex opens a persistent index at path.
func NewIndex(path string) (*Index, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &Index{backend: backend, owned: true, logger: backend.logger}, nil
}

// NewIndexWithBackend creates an index over an existing backend.
// Closing the index does not close the backend.
func NewIndexWithBackend(backend *Backend) (*Index, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &Index{backend: backend, logger: backend.logger}, nil
}

// Close closes the backend if the index opened it.
func (x *Index) Close() error {
	if !x.owned {
		return nil
	}
	return x.backend.Close()
}

// PutEntities inserts or replaces entities.
func (x *Index) PutEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error) {
	if x.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	for _, entity := range entities {
		if err := core.ValidateEntity(entity); err != nil {
			return nil, err
		}
	}
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, entity := range entities {
			if entity.Id == 0 {
				entity.Id = storage.EntityID(entity)
			}
			key := makeEntityKey(entity.Kind, entity.Id)

			old, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				entity.InsertedAt = old.InsertedAt
			} else if entity.InsertedAt.IsZero() {
				entity.InsertedAt = now
			}
			entity.UpdatedAt = now

			value, err := storage.MarshalEntity(entity)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// DeleteEntities removes entities by id.
func (x *Index) DeleteEntities(ctx context.Context, kind core.EntityKind, ids ...core.ID) error {
	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntityKey(kind, id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetByID retrieves a single entity.
func (x *Index) GetByID(ctx context.Context, kind core.EntityKind, id core.ID) (*core.Entity, error) {
	var result *core.Entity
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, makeEntityKey(kind, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Count returns the number of entities of one kind.
func (x *Index) Count(ctx context.Context, kind core.EntityKind) (int, error) {
	n := 0
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntityPrefix(kind)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	}, false)
	return n, err
}

// SearchByText scores every entity of the kind with storage.LexicalScore and
// returns the best matches.
func (x *Index) SearchByText(ctx context.Context, kind core.EntityKind, query string, limit int) ([]*core.CandidateResult, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	var results []*core.CandidateResult
	err := x.backend.scanEntities(ctx, kind, func(entity *core.Entity) bool {
		score := storage.LexicalScore(query, entity)
		if score > 0 {
			results = append(results, &core.CandidateResult{
				Entity:   entity,
				RawScore: score,
				Source:   core.SourceLexical,
			})
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return truncate(results, limit), nil
}

// SearchByVector ranks entities of the kind by cosine similarity to vector.
// Entities without embeddings are skipped.
func (x *Index) SearchByVector(ctx context.Context, kind core.EntityKind, vector []float32, limit int) ([]*core.CandidateResult, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	var results []*core.CandidateResult
	var mismatch bool
	err := x.backend.scanEntities(ctx, kind, func(entity *core.Entity) bool {
		if len(entity.Vector) == 0 {
			return true
		}
		if len(entity.Vector) != len(vector) {
			mismatch = true
			return false
		}
		results = append(results, &core.CandidateResult{
			Entity:   entity,
			RawScore: float64(dotProduct(vector, entity.Vector)),
			Source:   core.SourceVector,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	if mismatch {
		x.logger.Warn("query vector dimension differs from index", "kind", kind, "dims", len(vector))
		return nil, storage.ErrDimensionMismatch
	}
	return truncate(results, limit), nil
}

func truncate(results []*core.CandidateResult, limit int) []*core.CandidateResult {
	storage.SortCandidates(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// readEntity reads an entity from the transaction. Returns nil if missing.
func readEntity(tx *badger.Txn, key []byte) (*core.Entity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.Entity
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entity, unmarshalErr = storage.UnmarshalEntity(val)
		return unmarshalErr
	})
	return entity, err
}
