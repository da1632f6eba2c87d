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


package ingestion

import "errors"

var (
	// ErrWriterRequired is returned when an entity writer is not provided.
	ErrWriterRequired = errors.New("entity writer required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidRecord is returned when a seed record is missing required fields.
	ErrInvalidRecord = errors.New("invalid seed record")

	// ErrIncomplete is returned when some batches could not be indexed.
	ErrIncomplete = errors.New("indexing incomplete")
)
