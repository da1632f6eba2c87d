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


// Package config assembles the settings of every search component.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML or TOML file, and RECIPESEARCH_* environment variables (a .env file
// in the working directory is loaded first). Nested keys map to environment
// names by replacing dots with underscores, so search.max_limit is read
// from RECIPESEARCH_SEARCH_MAX_LIMIT.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/poiesic/recipesearch/ai"
	"github.com/poiesic/recipesearch/fusion"
	"github.com/poiesic/recipesearch/ingestion"
	"github.com/poiesic/recipesearch/korean"
	"github.com/poiesic/recipesearch/normalize"
	"github.com/poiesic/recipesearch/rerank"
	"github.com/poiesic/recipesearch/retrieval"
	"github.com/poiesic/recipesearch/search"
	"github.com/poiesic/recipesearch/synonym"
	"github.com/poiesic/recipesearch/threshold"
)

// Storage backends.
const (
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// StorageConfig selects and locates the index.
type StorageConfig struct {
	Backend     string `mapstructure:"backend" validate:"oneof=badger postgres"`
	Path        string `mapstructure:"path" validate:"required_if=Backend badger"`
	PostgresURL string `mapstructure:"postgres_url" validate:"required_if=Backend postgres"`

	// Dimensions sizes the postgres vector column.
	Dimensions int `mapstructure:"dimensions" validate:"gte=1"`
}

// SynonymConfig locates the synonym dictionary. An empty path uses the
// built-in dictionary.
type SynonymConfig struct {
	Path           string `mapstructure:"path"`
	synonym.Config `mapstructure:",squash"`
}

// RerankConfig switches the AI re-ranker on and tunes it.
type RerankConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	rerank.Config `mapstructure:",squash"`
}

// Config is the complete configuration.
type Config struct {
	AI        ai.Config        `mapstructure:"ai"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Synonyms  SynonymConfig    `mapstructure:"synonyms"`
	Repair    korean.Config    `mapstructure:"repair"`
	Retrieval retrieval.Config `mapstructure:"retrieval"`
	Normalize normalize.Config `mapstructure:"normalize"`
	Fusion    fusion.Config    `mapstructure:"fusion"`
	Rerank    RerankConfig     `mapstructure:"rerank"`
	Threshold threshold.Config `mapstructure:"threshold"`
	Search    search.Config    `mapstructure:"search"`
	Ingestion ingestion.Config `mapstructure:"ingestion"`
}

// Default returns the tuned defaults for every component.
func Default() *Config {
	return &Config{
		AI: *ai.DefaultConfig(),
		Storage: StorageConfig{
			Backend:    BackendBadger,
			Path:       "recipesearch.db",
			Dimensions: 768,
		},
		Synonyms:  SynonymConfig{Config: synonym.DefaultConfig()},
		Repair:    korean.DefaultConfig(),
		Retrieval: retrieval.DefaultConfig(),
		Normalize: normalize.DefaultConfig(),
		Fusion:    fusion.DefaultConfig(),
		Rerank:    RerankConfig{Enabled: true, Config: rerank.DefaultConfig()},
		Threshold: threshold.DefaultConfig(),
		Search:    search.DefaultConfig(),
		Ingestion: ingestion.DefaultConfig(),
	}
}

// Validate checks every section. The AI section is normalized in place.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
