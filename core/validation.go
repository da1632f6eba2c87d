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


package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// ValidateQuery validates a Query according to domain rules.
//
// Validation rules:
//   - Text must not be empty after trimming whitespace
//   - Scope must be one of all, recipe, ingredient
//   - Limit must be between 1 and maxLimit
//
// The query text is checked first so an empty query is reported before anything else.
func ValidateQuery(q *Query, maxLimit int) error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}

	if err := validate.Struct(q); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		for _, fe := range validationErrors {
			switch fe.Field() {
			case "Scope":
				return fmt.Errorf("%w: %w: %q", ErrInvalidQuery, ErrInvalidScope, q.Scope)
			case "Limit":
				return fmt.Errorf("%w: %w: %d", ErrInvalidQuery, ErrInvalidLimit, q.Limit)
			}
		}
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	if maxLimit > 0 && q.Limit > maxLimit {
		return fmt.Errorf("%w: %w: %d exceeds maximum %d", ErrInvalidQuery, ErrInvalidLimit, q.Limit, maxLimit)
	}

	return nil
}

// ValidateEntity validates an Entity before it is indexed.
//
// Validation rules:
//   - Name must not be empty
//   - Kind must be recipe or ingredient
//
// NOT validated:
//   - Vector (can be empty until embedded)
//   - ID (0 is replaced by a content-derived ID at indexing time)
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if strings.TrimSpace(entity.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityName)
	}

	if err := ValidateEntityKind(entity.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	return nil
}

// ValidateEntityKind validates that an EntityKind has a valid value.
func ValidateEntityKind(kind EntityKind) error {
	if kind != EntityKindRecipe && kind != EntityKindIngredient {
		return fmt.Errorf("%w: value %d", ErrInvalidEntityKind, kind)
	}
	return nil
}

// ParseScope converts a string into a Scope. Empty input yields ScopeAll.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeRecipe, "recipes":
		return ScopeRecipe, nil
	case ScopeIngredient, "ingredients":
		return ScopeIngredient, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}
