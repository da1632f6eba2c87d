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


// Package search provides hybrid recipe and ingredient search.
//
// The Searcher type runs a multi-stage pipeline for every request:
//   - Korean query repair (jamo recomposition and typo correction)
//   - Parallel retrieval from lexical, synonym-expanded and vector search
//   - Fusion of the candidate sets into one deduplicated ranking
//   - Optional LLM re-ranking
//   - A dynamic threshold gate for results backed only by vector similarity
//
// A failing signal source degrades to an empty candidate set, so a search
// only fails on invalid input.
package search
