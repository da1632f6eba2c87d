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


// Package storage provides the index abstraction used by search.
//
// The interfaces decouple retrieval from the backend so the BadgerDB index,
// the PostgreSQL index, or a test fake can be used interchangeably.
//
// # Interfaces
//
//   - LexicalSearcher: keyword search with field boosts and fuzziness
//   - VectorSearcher: cosine similarity search over unit embeddings
//   - EntityGetter: lookup by id
//   - EntityWriter: ingestion-side writes
//   - Index: all of the above plus Close
//
// # Usage
//
// Open a persistent index:
//
//	idx, err := badger.NewIndex("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
// Use in tests with in-memory storage:
//
//	idx, err := badger.NewMemoryIndex()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
// # Scores
//
// Lexical raw scores are unbounded boosted term scores (see LexicalScore);
// vector raw scores are cosine similarities. Callers normalize them before
// comparing across sources.
//
// # Thread Safety
//
// All index implementations must be safe for concurrent use.
package storage
