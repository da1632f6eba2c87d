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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `mapstructure:"embedding_host"`

	// JudgeHost is the base URL for the relevance judge chat API.
	JudgeHost string `mapstructure:"judge_host"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string `mapstructure:"embedding_model"`

	// JudgeModel is the chat model used to score result relevance.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	JudgeModel string `mapstructure:"judge_model"`

	// APIKey is sent as the bearer token. Local servers accept "none".
	APIKey string `mapstructure:"api_key"`

	// JudgeTemperature controls judge sampling. Low values keep scores stable.
	// Default: 0.3
	JudgeTemperature float64 `mapstructure:"judge_temperature"`

	// EmbedMaxAttempts and EmbedBaseDelay bound embedding retries.
	EmbedMaxAttempts int           `mapstructure:"embed_max_attempts"`
	EmbedBaseDelay   time.Duration `mapstructure:"embed_base_delay"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithJudgeHost sets the judge service host URL.
func WithJudgeHost(host string) ConfigOption {
	return func(c *Config) {
		c.JudgeHost = host
	}
}

// WithHost sets both embedding and judge hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.JudgeHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithJudgeModel sets the judge model identifier.
func WithJudgeModel(model string) ConfigOption {
	return func(c *Config) {
		c.JudgeModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithJudgeTemperature sets the judge sampling temperature.
func WithJudgeTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.JudgeTemperature = t
	}
}

// WithEmbedRetry sets the embedding retry policy.
func WithEmbedRetry(maxAttempts int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.EmbedMaxAttempts = maxAttempts
		c.EmbedBaseDelay = baseDelay
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and judge use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:    defaultHost,
		JudgeHost:        defaultHost,
		EmbeddingModel:   "embeddinggemma",
		JudgeModel:       "qwen2.5:3b",
		APIKey:           "none",
		JudgeTemperature: 0.3,
		EmbedMaxAttempts: 3,
		EmbedBaseDelay:   200 * time.Millisecond,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithJudgeModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.JudgeHost = withV1(c.JudgeHost)
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.JudgeHost == "" {
		return errors.New("ai config: JudgeHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.JudgeModel == "" {
		return errors.New("ai config: JudgeModel is required")
	}
	if c.JudgeTemperature < 0 || c.JudgeTemperature > 2 {
		return errors.New("ai config: JudgeTemperature must be between 0 and 2")
	}
	if c.EmbedMaxAttempts < 1 {
		return errors.New("ai config: EmbedMaxAttempts must be at least 1")
	}
	if c.EmbedBaseDelay < 0 {
		return errors.New("ai config: EmbedBaseDelay must not be negative")
	}
	return nil
}
