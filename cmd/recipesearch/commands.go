package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/recipesearch"
	"github.com/poiesic/recipesearch/config"
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/ingestion"
	"github.com/poiesic/recipesearch/synonym"
)

func searchCommand(c *cli.Context, open engineOpener) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	scope, err := core.ParseScope(c.String("scope"))
	if err != nil {
		return err
	}
	noRerank := func(cfg *config.Config) {
		if c.Bool("no-rerank") {
			cfg.Rerank.Enabled = false
		}
	}

	return withEngine(c, open, noRerank, func(ctx context.Context, engine *recipesearch.Engine) error {
		resp, err := engine.Search(ctx, core.Query{Text: query, Scope: scope, Limit: c.Int("limit")})
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(c.App.Writer, newResponseView(resp))
		}
		printResponse(c.App.Writer, resp)
		return nil
	})
}

func repairCommand(c *cli.Context, open engineOpener) error {
	texts := c.Args().Slice()
	if len(texts) == 0 {
		return fmt.Errorf("at least one text is required")
	}
	return withEngine(c, open, nil, func(ctx context.Context, engine *recipesearch.Engine) error {
		w := c.App.Writer
		for _, cq := range engine.Repair(ctx, texts...) {
			if cq.Correction != nil {
				fmt.Fprintf(w, "%s -> %s (%s)\n", cq.Correction.Original, cq.Correction.Corrected, cq.Correction.Method)
			} else {
				fmt.Fprintf(w, "%s (unchanged)\n", cq.Text)
			}
			if len(cq.Suggestions) > 0 {
				fmt.Fprintf(w, "  suggestions: %s\n", strings.Join(cq.Suggestions, ", "))
			}
		}
		return nil
	})
}

func synonymsCommand(c *cli.Context) error {
	term, err := queryArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dict := synonym.Default
	if cfg.Synonyms.Path != "" {
		dict = func() (*synonym.Dictionary, error) { return synonym.LoadFile(cfg.Synonyms.Path) }
	}
	d, err := dict()
	if err != nil {
		return fmt.Errorf("failed to load synonym dictionary: %w", err)
	}
	expander, err := synonym.NewExpander(d, synonym.WithConfig(cfg.Synonyms.Config))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if match, ok := expander.FindStandard(term); ok {
		fmt.Fprintf(w, "standard: %s [%s] (confidence %.2f)\n", match.Standard, match.Category, match.Confidence)
	} else {
		fmt.Fprintln(w, "standard: (none)")
	}
	fmt.Fprintf(w, "expansions: %s\n", strings.Join(expander.Expand(term), ", "))
	for _, m := range expander.FindSimilar(term, c.Int("similar")) {
		fmt.Fprintf(w, "similar: %s [%s] (%.2f)\n", m.Standard, m.Category, m.Confidence)
	}
	return nil
}

func indexCommand(c *cli.Context, open engineOpener) error {
	seed, err := ingestion.LoadSeedFile(c.String("seed"))
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}
	tune := func(cfg *config.Config) {
		if n := c.Int("workers"); n > 0 {
			cfg.Ingestion.Workers = n
		}
		if n := c.Int("batch-size"); n > 0 {
			cfg.Ingestion.BatchSize = n
		}
	}

	return withEngine(c, open, tune, func(ctx context.Context, engine *recipesearch.Engine) error {
		indexer, err := engine.NewIndexer(ingestion.WithProgress(c.App.ErrWriter))
		if err != nil {
			return err
		}
		defer indexer.Release()

		stats, err := indexer.IndexSeed(ctx, seed)
		fmt.Fprintf(c.App.Writer, "indexed %d of %d records in %s\n", stats.Indexed, stats.Total, stats.Elapsed.Round(time.Millisecond))
		return err
	})
}

func printResponse(w io.Writer, resp *core.Response) {
	if resp.Correction != nil {
		fmt.Fprintf(w, "corrected: %s -> %s\n", resp.Correction.Original, resp.Correction.Corrected)
	}
	printResults(w, "recipes", resp.Recipes)
	printResults(w, "ingredients", resp.Ingredients)
	if len(resp.Suggestions) > 0 {
		fmt.Fprintf(w, "suggestions: %s\n", strings.Join(resp.Suggestions, ", "))
	}
	fmt.Fprintf(w, "%d matches in %dms\n", resp.TotalMatches, resp.ProcessingTimeMs())
}

func printResults(w io.Writer, title string, results []*core.FusedResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for i, r := range results {
		fmt.Fprintf(w, "%3d. %-20s %6.1f  %s\n", i+1, r.Entity.Name, r.Score, r.Reason)
	}
}

type resultView struct {
	ID          core.ID  `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Score       float64  `json:"score"`
	Sources     []string `json:"sources"`
	Reason      string   `json:"reason"`
	Ingredients []string `json:"ingredients,omitempty"`
}

type responseView struct {
	RequestID        string           `json:"request_id"`
	Recipes          []resultView     `json:"recipes"`
	Ingredients      []resultView     `json:"ingredients"`
	TotalMatches     int              `json:"total_matches"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	Correction       *core.Correction `json:"correction,omitempty"`
	Suggestions      []string         `json:"suggestions,omitempty"`
}

func newResponseView(resp *core.Response) responseView {
	return responseView{
		RequestID:        resp.RequestID,
		Recipes:          resultViews(resp.Recipes),
		Ingredients:      resultViews(resp.Ingredients),
		TotalMatches:     resp.TotalMatches,
		ProcessingTimeMs: resp.ProcessingTimeMs(),
		Correction:       resp.Correction,
		Suggestions:      resp.Suggestions,
	}
}

func resultViews(results []*core.FusedResult) []resultView {
	out := make([]resultView, 0, len(results))
	for _, r := range results {
		v := resultView{
			ID:       r.Entity.Id,
			Name:     r.Entity.Name,
			Category: r.Entity.Category,
			Score:    r.Score,
			Reason:   r.Reason,
		}
		for _, s := range r.Sources {
			v.Sources = append(v.Sources, s.String())
		}
		for _, ing := range r.Ingredients {
			v.Ingredients = append(v.Ingredients, ing.Name)
		}
		out = append(out, v)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
