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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recipesearch"
	"github.com/poiesic/recipesearch/config"
)

// engineOpener builds the engine a command runs against.
type engineOpener func(c *cli.Context, cfg *config.Config) (*recipesearch.Engine, error)

func openEngine(c *cli.Context, cfg *config.Config) (*recipesearch.Engine, error) {
	return recipesearch.NewEngine(c.Context, cfg)
}

func main() {
	if err := newApp(openEngine).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(open engineOpener) *cli.App {
	return &cli.App{
		Name:  "recipesearch",
		Usage: "Hybrid Korean recipe and ingredient search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or TOML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the BadgerDB index directory (overrides storage.path)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search recipes and ingredients",
				ArgsUsage: "<query>",
				Action:    func(c *cli.Context) error { return searchCommand(c, open) },
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "scope",
						Aliases: []string{"s"},
						Usage:   "What to search: all, recipe or ingredient",
						Value:   "all",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum results per entity kind (0 uses the configured default)",
					},
					&cli.BoolFlag{
						Name:  "no-rerank",
						Usage: "Skip AI re-ranking",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the response as JSON",
					},
				},
			},
			{
				Name:      "repair",
				Usage:     "Correct Korean query text without searching",
				ArgsUsage: "<text>...",
				Action:    func(c *cli.Context) error { return repairCommand(c, open) },
			},
			{
				Name:      "synonyms",
				Usage:     "Show the standard name, expansions and similar names of a term",
				ArgsUsage: "<term>",
				Action:    synonymsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "similar",
						Usage: "Number of similar standard names to list",
						Value: 5,
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed and index recipes and ingredients from a seed file",
				Action: func(c *cli.Context) error { return indexCommand(c, open) },
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "seed",
						Usage:    "Path to a YAML seed file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent embedding batches (0 uses the configured value)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Records per embedding call (0 uses the configured value)",
					},
				},
			},
		},
	}
}

// loadConfig reads the configuration and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Storage.Backend = config.BackendBadger
		cfg.Storage.Path = db
	}
	return cfg, nil
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("a query is required")
	}
	return query, nil
}

func withEngine(c *cli.Context, open engineOpener, mutate func(*config.Config), fn func(context.Context, *recipesearch.Engine) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if mutate != nil {
		mutate(cfg)
	}
	engine, err := open(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()
	return fn(c.Context, engine)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
