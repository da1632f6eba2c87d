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


package fusion

// Config holds every fusion constant.
type Config struct {
	// Recipe lexical bonuses.
	ExactNameBonus         float64 `mapstructure:"exact_name_bonus" validate:"gte=0"`
	NameContainsBonus      float64 `mapstructure:"name_contains_bonus" validate:"gte=0"`
	IngredientsMatchBonus  float64 `mapstructure:"ingredients_match_bonus" validate:"gte=0"`
	WordOverlapBonusWeight float64 `mapstructure:"word_overlap_bonus_weight" validate:"gte=0"`

	// Ingredient lexical bonuses.
	IngredientExactBonus   float64 `mapstructure:"ingredient_exact_bonus" validate:"gte=0"`
	IngredientPartialBonus float64 `mapstructure:"ingredient_partial_bonus" validate:"gte=0"`
	AliasMatchBonus        float64 `mapstructure:"alias_match_bonus" validate:"gte=0"`

	// SynonymDiscount scales synonym matches below direct matches.
	SynonymDiscount float64 `mapstructure:"synonym_discount" validate:"gte=0,lte=1"`

	// VectorWeight caps vector-derived scores.
	VectorWeight float64 `mapstructure:"vector_weight" validate:"gte=0,lte=1"`

	// Verification factors applied to vector hits.
	MinOverlapFactor  float64 `mapstructure:"min_overlap_factor" validate:"gte=0,lte=1"`
	CategoryFactor    float64 `mapstructure:"category_factor" validate:"gte=0,lte=1"`
	UnrelatedFactor   float64 `mapstructure:"unrelated_factor" validate:"gte=0,lte=1"`
	VerificationFloor float64 `mapstructure:"verification_floor" validate:"gte=0,lte=1"`

	// CategoryRules groups dish keywords. A vector hit whose name shares a
	// group with the query counts as related.
	CategoryRules map[string][]string `mapstructure:"category_rules"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		ExactNameBonus:         50,
		NameContainsBonus:      35,
		IngredientsMatchBonus:  25,
		WordOverlapBonusWeight: 20,
		IngredientExactBonus:   50,
		IngredientPartialBonus: 30,
		AliasMatchBonus:        25,
		SynonymDiscount:        0.8,
		VectorWeight:           0.7,
		MinOverlapFactor:       0.5,
		CategoryFactor:         0.6,
		UnrelatedFactor:        0.1,
		VerificationFloor:      0.3,
		CategoryRules: map[string][]string{
			"면":   {"라면", "국수", "파스타", "우동", "냉면"},
			"볶음":  {"볶음밥", "볶음면", "볶음"},
			"국물":  {"찌개", "국", "탕", "스프"},
			"디저트": {"케이크", "쿠키", "파이", "타르트", "푸딩"},
		},
	}
}
