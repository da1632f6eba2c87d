package core

import "strings"

const (
	maxParsedIngredients = 10
	mainIngredientCount  = 3
)

// ingredientSeparators are tried in order; the first one present splits the list.
var ingredientSeparators = []string{",", "\n", ";", "|"}

// ExtractIngredients parses a free-form ingredient list.
// It never fails: empty or unparseable input yields an empty list.
// At most 10 entries are returned and the first 3 are marked as main ingredients.
func ExtractIngredients(text string) []RecipeIngredient {
	text = strings.TrimSpace(text)
	if text == "" {
		return []RecipeIngredient{}
	}

	names := []string{text}
	for _, sep := range ingredientSeparators {
		if strings.Contains(text, sep) {
			names = strings.Split(text, sep)
			break
		}
	}

	ingredients := make([]RecipeIngredient, 0, min(len(names), maxParsedIngredients))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ingredients = append(ingredients, RecipeIngredient{
			Position: len(ingredients) + 1,
			Name:     name,
			Main:     len(ingredients) < mainIngredientCount,
		})
		if len(ingredients) == maxParsedIngredients {
			break
		}
	}
	return ingredients
}

// IngredientNames returns the names of the first n parsed ingredients.
func IngredientNames(ingredients []RecipeIngredient, n int) []string {
	if n > len(ingredients) {
		n = len(ingredients)
	}
	names := make([]string, 0, n)
	for _, ing := range ingredients[:n] {
		names = append(names, ing.Name)
	}
	return names
}
