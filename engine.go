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


// Package recipesearch wires the search components into a ready-to-use
// engine over a recipe and ingredient index.
package recipesearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/recipesearch/ai"
	"github.com/poiesic/recipesearch/ai/openai"
	"github.com/poiesic/recipesearch/config"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/fusion"
	"github.com/poiesic/recipesearch/ingestion"
	"github.com/poiesic/recipesearch/korean"
	"github.com/poiesic/recipesearch/normalize"
	"github.com/poiesic/recipesearch/rerank"
	"github.com/poiesic/recipesearch/retrieval"
	"github.com/poiesic/recipesearch/search"
	"github.com/poiesic/recipesearch/storage"
	"github.com/poiesic/recipesearch/storage/badger"
	"github.com/poiesic/recipesearch/storage/postgres"
	"github.com/poiesic/recipesearch/synonym"
	"github.com/poiesic/recipesearch/threshold"
)

// Engine owns the index, the AI provider and the search pipeline built
// over them.
type Engine struct {
	config       *config.Config
	index        storage.Index
	provider     ai.AIProvider
	expander     *synonym.Expander
	reranker     *rerank.Reranker
	searcher     *search.Searcher
	ownsIndex    bool
	ownsProvider bool
	baseLogger   *slog.Logger
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	index    storage.Index
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithIndex uses an already open index instead of opening the configured
// storage. The caller keeps ownership of the index.
func WithIndex(index storage.Index) EngineOption {
	return func(o *engineOptions) {
		o.index = index
	}
}

// WithProvider uses the given AI provider instead of the configured
// OpenAI-compatible services. The caller keeps ownership of the provider.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger handed to every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine builds an engine from cfg. A nil cfg uses config.Default().
func NewEngine(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	e := &Engine{
		config:     cfg,
		index:      options.index,
		provider:   options.provider,
		baseLogger: options.logger,
		logger:     options.logger.With("component", "engine"),
	}

	if e.index == nil {
		index, err := openIndex(ctx, cfg.Storage, options.logger)
		if err != nil {
			return nil, err
		}
		e.index = index
		e.ownsIndex = true
	}

	if e.provider == nil {
		provider, err := openai.NewProvider(&cfg.AI)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.provider = provider
		e.ownsProvider = true
	}

	if err := e.build(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func openIndex(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Index, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		index, err := postgres.NewIndex(ctx, cfg.PostgresURL, postgres.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := index.Migrate(ctx, cfg.Dimensions); err != nil {
			index.Close()
			return nil, fmt.Errorf("migrating postgres schema: %w", err)
		}
		return index, nil
	default:
		return badger.NewIndex(cfg.Path)
	}
}

func (e *Engine) build() error {
	cfg, logger := e.config, e.baseLogger

	dict, err := loadDictionary(cfg.Synonyms.Path)
	if err != nil {
		return err
	}
	e.expander, err = synonym.NewExpander(dict,
		synonym.WithConfig(cfg.Synonyms.Config),
		synonym.WithLogger(logger))
	if err != nil {
		return err
	}

	repairer, err := korean.NewRepairer(e.index,
		korean.WithConfig(cfg.Repair),
		korean.WithLogger(logger))
	if err != nil {
		return err
	}

	embedder, err := ai.NewRetryingEmbedder(e.provider.Embedder(), cfg.AI.EmbedMaxAttempts, cfg.AI.EmbedBaseDelay)
	if err != nil {
		return err
	}
	orchestrator, err := retrieval.NewOrchestrator(e.index, e.expander,
		retrieval.WithConfig(cfg.Retrieval),
		retrieval.WithVectorSearch(e.index, embedder),
		retrieval.WithLogger(logger))
	if err != nil {
		return err
	}

	fuser, err := fusion.NewEngine(
		fusion.WithConfig(cfg.Fusion),
		fusion.WithNormalizer(normalize.New(cfg.Normalize)),
		fusion.WithLogger(logger))
	if err != nil {
		return err
	}

	searchOpts := []search.Option{
		search.WithConfig(cfg.Search),
		search.WithThresholdCalculator(threshold.NewCalculator(cfg.Threshold)),
		search.WithLogger(logger),
	}
	if cfg.Rerank.Enabled {
		e.reranker, err = rerank.NewReranker(e.provider.Judge(),
			rerank.WithConfig(cfg.Rerank.Config),
			rerank.WithLogger(logger))
		if err != nil {
			return err
		}
		searchOpts = append(searchOpts, search.WithReranker(e.reranker))
	}

	e.searcher, err = search.NewSearcher(repairer, orchestrator, fuser, searchOpts...)
	return err
}

func loadDictionary(path string) (*synonym.Dictionary, error) {
	if path == "" {
		return synonym.Default()
	}
	dict, err := synonym.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading synonym dictionary %s: %w", path, err)
	}
	return dict, nil
}

// Search runs one query through repair, retrieval, fusion, re-ranking and
// thresholding.
func (e *Engine) Search(ctx context.Context, query core.Query) (*core.Response, error) {
	return e.searcher.Search(ctx, query)
}

// SearchWithMonitor is Search with stage callbacks.
func (e *Engine) SearchWithMonitor(ctx context.Context, query core.Query, monitor search.SearchMonitor) (*core.Response, error) {
	return e.searcher.SearchWithMonitor(ctx, query, monitor)
}

// Repair corrects each text without searching.
func (e *Engine) Repair(ctx context.Context, texts ...string) []core.CorrectedQuery {
	return e.searcher.Repair(ctx, texts...)
}

// Synonyms returns the synonym expander.
func (e *Engine) Synonyms() *synonym.Expander {
	return e.expander
}

// Index returns the underlying index.
func (e *Engine) Index() storage.Index {
	return e.index
}

// NewIndexer creates an indexer writing to the engine's index with the
// engine's embedder. The caller must Release it.
func (e *Engine) NewIndexer(opts ...ingestion.Option) (*ingestion.Indexer, error) {
	opts = append([]ingestion.Option{
		ingestion.WithConfig(e.config.Ingestion),
		ingestion.WithLogger(e.baseLogger),
	}, opts...)
	return ingestion.NewIndexer(e.index, e.provider.Embedder(), opts...)
}

// Close releases the re-ranker pool and closes the provider and index the
// engine opened itself.
func (e *Engine) Close() error {
	if e.reranker != nil {
		e.reranker.Close()
	}

	var errs []error
	if e.ownsProvider && e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if e.ownsIndex && e.index != nil {
		if err := e.index.Close(); err != nil {
			e.logger.Error("error closing index", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
