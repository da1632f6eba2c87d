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


package synonym

import "errors"

var (
	// ErrDictionaryRequired is returned when no dictionary is provided.
	ErrDictionaryRequired = errors.New("synonym dictionary required")

	// ErrEmptyDictionary is returned when a dictionary source has no entries.
	ErrEmptyDictionary = errors.New("synonym dictionary is empty")

	// ErrInvalidEntry is returned when a dictionary entry lacks a category or standard name.
	ErrInvalidEntry = errors.New("invalid synonym entry")
)
