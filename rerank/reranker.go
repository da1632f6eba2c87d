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


package rerank

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recipesearch/ai"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/fusion"
	"github.com/poiesic/recipesearch/normalize"
	"github.com/poiesic/recipesearch/text"
)

// Config tunes re-ranking.
type Config struct {
	BatchSize      int           `mapstructure:"batch_size" validate:"gte=1"`
	MaxIngredients int           `mapstructure:"max_ingredients" validate:"gte=0"`
	MinScore       float64       `mapstructure:"min_score" validate:"gte=0,lte=100"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout" validate:"gte=0"`
	Workers        int           `mapstructure:"workers" validate:"gte=1"`

	// Name match bonuses added to the judge score.
	ExactBonus     float64 `mapstructure:"exact_bonus" validate:"gte=0"`
	ContainsBonus  float64 `mapstructure:"contains_bonus" validate:"gte=0"`
	ContainedBonus float64 `mapstructure:"contained_bonus" validate:"gte=0"`
	OverlapWeight  float64 `mapstructure:"overlap_weight" validate:"gte=0"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:      5,
		MaxIngredients: 5,
		MinScore:       60,
		BatchTimeout:   15 * time.Second,
		Workers:        4,
		ExactBonus:     20,
		ContainsBonus:  15,
		ContainedBonus: 10,
		OverlapWeight:  10,
	}
}

// Reranker re-scores fused results with an LLM judge.
type Reranker struct {
	judge  ai.Judge
	pool   *ants.Pool
	config Config
	logger *slog.Logger
}

// Option configures a Reranker.
type Option func(*Reranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "rerank")
		return nil
	}
}

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(r *Reranker) error {
		if config.BatchSize < 1 || config.Workers < 1 {
			return fmt.Errorf("%w: batch size %d, workers %d", ErrInvalidConfig, config.BatchSize, config.Workers)
		}
		r.config = config
		return nil
	}
}

// NewReranker creates a re-ranker backed by a worker pool.
// Call Close to release the pool.
func NewReranker(judge ai.Judge, opts ...Option) (*Reranker, error) {
	if judge == nil {
		return nil, ErrJudgeRequired
	}

	r := &Reranker{
		judge:  judge,
		config: DefaultConfig(),
		logger: slog.Default().With("component", "rerank"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(r.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	r.pool = pool

	return r, nil
}

// Close releases the worker pool.
func (r *Reranker) Close() {
	r.pool.Release()
}

// Rerank sends results to the judge in batches and replaces each judged
// score with min(judge + name bonus, 100). Judged results scoring below the
// minimum are dropped. Results of a failed, panicked or timed out batch keep
// their fused scores. The returned slice is sorted by score descending, ties
// by id ascending. The second value holds the thresholds the judge suggested
// for the query, one per batch that proposed one.
func (r *Reranker) Rerank(ctx context.Context, query string, results []*core.FusedResult) ([]*core.FusedResult, []float64) {
	if len(results) == 0 {
		return results, nil
	}

	judged := make([]bool, len(results))
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		suggestions []float64
	)

	for start := 0; start < len(results); start += r.config.BatchSize {
		end := min(start+r.config.BatchSize, len(results))
		batch := results[start:end]
		marks := judged[start:end]

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			if suggested, ok := r.scoreBatch(ctx, query, batch, marks); ok {
				mu.Lock()
				suggestions = append(suggestions, suggested)
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			r.logger.Warn("failed to submit rerank batch", "start", start, "err", err)
		}
	}
	wg.Wait()

	out := make([]*core.FusedResult, 0, len(results))
	dropped := 0
	for i, res := range results {
		if judged[i] && res.Score < r.config.MinScore {
			dropped++
			continue
		}
		out = append(out, res)
	}
	fusion.Sort(out)

	r.logger.Debug("rerank complete",
		"query", query,
		"in", len(results),
		"dropped", dropped,
		"suggestions", suggestions)
	return out, suggestions
}

type batchResult struct {
	verdict ai.Verdict
	err     error
}

// scoreBatch judges one batch and returns the judge's suggested threshold,
// if any. Batches own disjoint results, so no locking is needed.
func (r *Reranker) scoreBatch(ctx context.Context, query string, batch []*core.FusedResult, marks []bool) (float64, bool) {
	if r.config.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.BatchTimeout)
		defer cancel()
	}

	items := make([]ai.JudgeItem, len(batch))
	for i, res := range batch {
		items[i] = ai.JudgeItem{
			Name:        res.Entity.Name,
			Category:    res.Entity.Category,
			Ingredients: core.IngredientNames(res.Ingredients, r.config.MaxIngredients),
		}
	}

	done := make(chan batchResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- batchResult{err: fmt.Errorf("%w: %v", ErrJudgePanic, p)}
			}
		}()
		verdict, err := r.judge.ScoreBatch(ctx, query, items)
		done <- batchResult{verdict: verdict, err: err}
	}()

	var result batchResult
	select {
	case result = <-done:
	case <-ctx.Done():
		r.logger.Warn("rerank batch timed out, keeping fused scores", "size", len(batch), "err", ctx.Err())
		return 0, false
	}
	if result.err != nil {
		r.logger.Warn("rerank batch failed, keeping fused scores", "size", len(batch), "err", result.err)
		return 0, false
	}
	scores := result.verdict.Scores
	if len(scores) != len(batch) {
		r.logger.Warn("judge returned wrong number of scores", "want", len(batch), "got", len(scores))
		return 0, false
	}

	for i, res := range batch {
		judgeScore := normalize.Clamp100(scores[i])
		bonus := r.nameBonus(query, res.Entity.Name)
		res.Score = normalize.Round(min(judgeScore+bonus, 100))
		if !res.HasSource(core.SourceAI) {
			res.Sources = append(res.Sources, core.SourceAI)
			res.Reason += fmt.Sprintf(" + ai relevance (%.0f)", judgeScore)
		}
		marks[i] = true
	}
	return result.verdict.SuggestedThreshold, result.verdict.HasSuggestion()
}

// nameBonus rewards results whose name matches the query directly.
func (r *Reranker) nameBonus(query, name string) float64 {
	q := text.Fold(query)
	n := text.Fold(name)
	switch {
	case q == n:
		return r.config.ExactBonus
	case strings.Contains(n, q):
		return r.config.ContainsBonus
	case strings.Contains(q, n):
		return r.config.ContainedBonus
	default:
		return text.WordOverlap(query, name) * r.config.OverlapWeight
	}
}
