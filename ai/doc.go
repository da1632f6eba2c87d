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


// Package ai provides abstractions for the AI services used by search.
//
// This package defines interfaces for text embeddings and LLM relevance
// judging so retrieval and re-ranking depend on abstractions rather than on
// a concrete model API.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Judge: Scores how relevant a batch of results is to a query
//   - AIProvider: Aggregates AI services for convenient initialization
//
// RetryingEmbedder wraps any Embedder with bounded exponential backoff and
// unit-length normalization; it is what retrieval and ingestion use.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockJudge) return
// CONCRETE types to enable assertions and behavior injection:
//
//	mockJudge := mock.NewMockJudge()
//	mockJudge.WithScoreBatchFunc(...)
//	count := mockJudge.CallCount()
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "매운 국물 요리")
//	verdict, err := provider.Judge().ScoreBatch(ctx, "김치찌개", items)
package ai
