// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recipesearch/ai"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/storage"
)

// Config tunes the indexer.
type Config struct {
	Workers     int           `mapstructure:"workers" validate:"gte=1"`
	BatchSize   int           `mapstructure:"batch_size" validate:"gte=1"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

// DefaultConfig returns the default indexer settings.
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		BatchSize:   16,
		MaxAttempts: 3,
		RetryDelay:  500 * time.Millisecond,
	}
}

// Stats summarizes one indexing run.
type Stats struct {
	Total   int
	Indexed int
	Failed  int
	Elapsed time.Duration
}

// Indexer embeds entities and writes them to an index.
type Indexer struct {
	writer   storage.EntityWriter
	embedder ai.Embedder
	pool     *ants.Pool
	config   Config
	progress io.Writer
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithConfig replaces the default settings.
func WithConfig(config Config) Option {
	return func(ix *Indexer) error {
		if config.Workers < 1 || config.BatchSize < 1 || config.MaxAttempts < 1 {
			return fmt.Errorf("invalid indexer config: %+v", config)
		}
		ix.config = config
		return nil
	}
}

// WithProgress writes a progress line to w while indexing.
func WithProgress(w io.Writer) Option {
	return func(ix *Indexer) error {
		ix.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer writing to writer. Embedding calls are
// retried per the configured policy and vectors are stored at unit length.
// Call Release when done.
func NewIndexer(writer storage.EntityWriter, embedder ai.Embedder, opts ...Option) (*Indexer, error) {
	if writer == nil {
		return nil, ErrWriterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Indexer{
		writer: writer,
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	ix.logger = ix.logger.With("component", "indexer")

	retrying, err := ai.NewRetryingEmbedder(embedder, ix.config.MaxAttempts, ix.config.RetryDelay)
	if err != nil {
		return nil, err
	}
	ix.embedder = retrying

	pool, err := ants.NewPool(ix.config.Workers)
	if err != nil {
		return nil, err
	}
	ix.pool = pool
	return ix, nil
}

// IndexSeed indexes every record of seed.
func (ix *Indexer) IndexSeed(ctx context.Context, seed *Seed) (Stats, error) {
	entities, err := seed.Entities()
	if err != nil {
		return Stats{}, err
	}
	return ix.Index(ctx, entities...)
}

// Index embeds and stores entities in batches. Failed batches are logged
// and counted; when any batch fails the returned error wraps ErrIncomplete.
func (ix *Indexer) Index(ctx context.Context, entities ...*core.Entity) (Stats, error) {
	start := time.Now()
	stats := Stats{Total: len(entities)}
	if len(entities) == 0 {
		return stats, nil
	}

	var tracker *ProgressTracker
	if ix.progress != nil {
		tracker = NewProgressTracker(ix.progress, len(entities), ix.config.BatchSize)
		tracker.Start()
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for lo := 0; lo < len(entities); lo += ix.config.BatchSize {
		if ctx.Err() != nil {
			break
		}
		batch := entities[lo:min(lo+ix.config.BatchSize, len(entities))]

		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			indexed, err := ix.indexBatch(ctx, batch)
			if err != nil {
				ix.logger.Error("error indexing batch", "first", batch[0].Name, "size", len(batch), "err", err)
			}
			mu.Lock()
			stats.Indexed += indexed
			mu.Unlock()
			if tracker != nil {
				tracker.Increment(indexed)
			}
		})
		if err != nil {
			wg.Done()
			ix.logger.Error("error submitting batch", "err", err)
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}
	stats.Failed = stats.Total - stats.Indexed
	stats.Elapsed = time.Since(start)
	ix.logger.Info("indexing finished", "total", stats.Total, "indexed", stats.Indexed, "failed", stats.Failed, "elapsed", stats.Elapsed)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d records failed", ErrIncomplete, stats.Failed, stats.Total)
	}
	return stats, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []*core.Entity) (int, error) {
	texts := make([]string, len(batch))
	for i, e := range batch {
		texts[i] = e.EmbeddingText()
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(vectors))
	}
	for i := range batch {
		batch[i].Vector = vectors[i]
	}

	stored, err := ix.writer.PutEntities(ctx, batch...)
	if err != nil {
		return 0, err
	}
	return len(stored), nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}
