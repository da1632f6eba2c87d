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


package retrieval

import "errors"

var (
	// ErrLexicalSearcherRequired is returned when no lexical searcher is provided.
	ErrLexicalSearcherRequired = errors.New("lexical searcher required")

	// ErrExpanderRequired is returned when no synonym expander is provided.
	ErrExpanderRequired = errors.New("synonym expander required")

	// ErrEmbedderRequired is returned when vector search is enabled without an embedder.
	ErrEmbedderRequired = errors.New("embedder required for vector search")
)
