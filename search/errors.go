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


package search

import "errors"

var (
	// ErrRepairerRequired is returned when a query repairer is not provided.
	ErrRepairerRequired = errors.New("query repairer required")

	// ErrOrchestratorRequired is returned when a retrieval orchestrator is not provided.
	ErrOrchestratorRequired = errors.New("retrieval orchestrator required")

	// ErrFusionEngineRequired is returned when a fusion engine is not provided.
	ErrFusionEngineRequired = errors.New("fusion engine required")
)
