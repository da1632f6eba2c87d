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


package korean

import "errors"

var (
	// ErrLookupRequired is returned when no fuzzy lookup is provided.
	ErrLookupRequired = errors.New("fuzzy lookup required")

	// ErrInvalidCacheSize is returned when the correction cache size is not positive.
	ErrInvalidCacheSize = errors.New("cache size must be positive")
)
