// Package postgres implements storage.Index on PostgreSQL with the pgvector
// and pg_trgm extensions. Lexical search ranks a weighted tsvector with
// ts_rank_cd and adds trigram similarity and substring matches on names,
// ingredients and aliases, so misspelled and partial Korean terms still
// match. Vector search uses cosine distance.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/storage"
)

// schema creates the entity table. The verb is the embedding dimension.
const schema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE EXTENSION IF NOT EXISTS pg_trgm;
CREATE TABLE IF NOT EXISTS entities (
	kind         SMALLINT NOT NULL,
	id           BIGINT NOT NULL,
	name         TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	method       TEXT NOT NULL DEFAULT '',
	ingredients  TEXT NOT NULL DEFAULT '',
	aliases      TEXT[] NOT NULL DEFAULT '{}',
	tags         TEXT[] NOT NULL DEFAULT '{}',
	image        TEXT NOT NULL DEFAULT '',
	thumbnail    TEXT NOT NULL DEFAULT '',
	embed_vector vector(%d),
	search_vector tsvector GENERATED ALWAYS AS (
		setweight(to_tsvector('simple', name), 'A') ||
		setweight(to_tsvector('simple', ingredients), 'B') ||
		setweight(to_tsvector('simple', array_to_string(aliases, ' ')), 'B') ||
		setweight(to_tsvector('simple', array_to_string(tags, ' ')), 'C')
	) STORED,
	inserted_at  TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS entities_search_idx ON entities USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS entities_name_trgm_idx ON entities USING GIN (name gin_trgm_ops);
`

const entityColumns = `id, kind, name, category, method, ingredients, aliases, tags, image, thumbnail, inserted_at, updated_at`

// textSearch ranks full-text hits and adds trigram similarity of the name
// and a bonus for substring matches. $2 is the OR-ed tsquery, $4 the plain
// term text.
const textSearch = `
	SELECT ` + entityColumns + `,
		ts_rank_cd('{0.1, 0.2, 0.4, 1.0}', search_vector, websearch_to_tsquery('simple', $2)) * 10
		+ greatest(similarity(name, $4), word_similarity($4, name)) * 10
		+ CASE WHEN strpos(lower(name), lower($4)) > 0 THEN 5
			WHEN strpos(lower(ingredients), lower($4)) > 0
				OR strpos(lower(array_to_string(aliases, ' ')), lower($4)) > 0 THEN 2
			ELSE 0 END AS score
	FROM entities
	WHERE kind = $1 AND (
		search_vector @@ websearch_to_tsquery('simple', $2)
		OR name % $4
		OR $4 <% name
		OR strpos(lower(name), lower($4)) > 0
		OR strpos(lower(ingredients), lower($4)) > 0
		OR strpos(lower(array_to_string(aliases, ' ')), lower($4)) > 0)
	ORDER BY score DESC, id ASC
	LIMIT $3`

// pool is the subset of *pgxpool.Pool the index uses.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

var _ pool = (*pgxpool.Pool)(nil)

// Index implements storage.Index for PostgreSQL.
type Index struct {
	pool   pool
	logger *slog.Logger
}

var _ storage.Index = (*Index)(nil)

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger.With("component", "postgres")
		return nil
	}
}

// NewIndex connects to the database at dbURL.
func NewIndex(ctx context.Context, dbURL string, opts ...Option) (*Index, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	x, err := newIndex(p, opts...)
	if err != nil {
		p.Close()
		return nil, err
	}
	return x, nil
}

func newIndex(p pool, opts ...Option) (*Index, error) {
	x := &Index{
		pool:   p,
		logger: slog.Default().With("component", "postgres"),
	}
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Migrate creates the schema for embeddings of the given dimensions.
func (x *Index) Migrate(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", storage.ErrInvalidQuery)
	}
	_, err := x.pool.Exec(ctx, fmt.Sprintf(schema, dimensions))
	return err
}

// Close closes the connection pool.
func (x *Index) Close() error {
	x.pool.Close()
	return nil
}

// PutEntities upserts entities.
func (x *Index) PutEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error) {
	for _, entity := range entities {
		if err := core.ValidateEntity(entity); err != nil {
			return nil, err
		}
	}
	const upsert = `
		INSERT INTO entities (id, kind, name, category, method, ingredients, aliases, tags,
			image, thumbnail, embed_vector, inserted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::vector, $12, $12)
		ON CONFLICT (kind, id) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category, method = EXCLUDED.method,
			ingredients = EXCLUDED.ingredients, aliases = EXCLUDED.aliases, tags = EXCLUDED.tags,
			image = EXCLUDED.image, thumbnail = EXCLUDED.thumbnail,
			embed_vector = EXCLUDED.embed_vector, updated_at = EXCLUDED.updated_at
		RETURNING inserted_at, updated_at`

	err := pgx.BeginFunc(ctx, x.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, e := range entities {
			if e.Id == 0 {
				e.Id = storage.EntityID(e)
			}
			var vec any
			if len(e.Vector) > 0 {
				vec = FormatVector(e.Vector)
			}
			row := tx.QueryRow(ctx, upsert,
				int64(e.Id), int16(e.Kind), e.Name, e.Category, e.Method, e.IngredientsText,
				nonNil(e.Aliases), nonNil(e.Tags), e.Image, e.Thumbnail, vec, now)
			if err := row.Scan(&e.InsertedAt, &e.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// DeleteEntities removes entities by id.
func (x *Index) DeleteEntities(ctx context.Context, kind core.EntityKind, ids ...core.ID) error {
	return pgx.BeginFunc(ctx, x.pool, func(tx pgx.Tx) error {
		for _, id := range ids {
			tag, err := tx.Exec(ctx, `DELETE FROM entities WHERE kind = $1 AND id = $2`, int16(kind), int64(id))
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return storage.ErrNotFound
			}
		}
		return nil
	})
}

// GetByID retrieves a single entity. The embedding is not loaded.
func (x *Index) GetByID(ctx context.Context, kind core.EntityKind, id core.ID) (*core.Entity, error) {
	row := x.pool.QueryRow(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE kind = $1 AND id = $2`, int16(kind), int64(id))
	e, err := scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return e, err
}

// Count returns the number of entities of one kind.
func (x *Index) Count(ctx context.Context, kind core.EntityKind) (int, error) {
	var n int
	err := x.pool.QueryRow(ctx, `SELECT count(*) FROM entities WHERE kind = $1`, int16(kind)).Scan(&n)
	return n, err
}

// SearchByText ranks entities by full-text rank plus trigram and substring
// matches. Terms are OR-ed so partial matches still rank.
func (x *Index) SearchByText(ctx context.Context, kind core.EntityKind, query string, limit int) ([]*core.CandidateResult, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	terms := storage.Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}
	tsquery := strings.Join(terms, " or ")
	return x.query(ctx, core.SourceLexical, textSearch, int16(kind), tsquery, limit, strings.Join(terms, " "))
}

// SearchByVector ranks entities by cosine similarity.
func (x *Index) SearchByVector(ctx context.Context, kind core.EntityKind, vector []float32, limit int) ([]*core.CandidateResult, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	q := `
		SELECT ` + entityColumns + `, (1 - (embed_vector <=> $2::vector)) AS score
		FROM entities
		WHERE kind = $1 AND embed_vector IS NOT NULL
		ORDER BY embed_vector <=> $2::vector ASC, id ASC
		LIMIT $3`
	return x.query(ctx, core.SourceVector, q, int16(kind), FormatVector(vector), limit)
}

func (x *Index) query(ctx context.Context, source core.SourceKind, q string, args ...any) ([]*core.CandidateResult, error) {
	rows, err := x.pool.Query(ctx, q, args...)
	if err != nil {
		x.logger.Warn("index query failed", "source", source, "err", err)
		return nil, err
	}
	defer rows.Close()

	var results []*core.CandidateResult
	for rows.Next() {
		var (
			e     core.Entity
			id    int64
			kind  int16
			score float64
		)
		err := rows.Scan(&id, &kind, &e.Name, &e.Category, &e.Method, &e.IngredientsText,
			&e.Aliases, &e.Tags, &e.Image, &e.Thumbnail, &e.InsertedAt, &e.UpdatedAt, &score)
		if err != nil {
			return nil, err
		}
		e.Id, e.Kind = core.ID(id), core.EntityKind(kind)
		results = append(results, &core.CandidateResult{Entity: &e, RawScore: score, Source: source})
	}
	return results, rows.Err()
}

func scanEntity(row pgx.Row) (*core.Entity, error) {
	var (
		e    core.Entity
		id   int64
		kind int16
	)
	err := row.Scan(&id, &kind, &e.Name, &e.Category, &e.Method, &e.IngredientsText,
		&e.Aliases, &e.Tags, &e.Image, &e.Thumbnail, &e.InsertedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Id, e.Kind = core.ID(id), core.EntityKind(kind)
	return &e, nil
}

// FormatVector renders a vector in pgvector text form, e.g. "[0.1,0.2]".
func FormatVector(v []float32) string {
	var b strings.Builder
	b.WriteString("[")
	for i, f := range v {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteString("]")
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
