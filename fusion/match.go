package fusion

import (
	"sort"
	"strings"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/text"
)

// view holds the folded fields of one entity used for matching.
type view struct {
	name        string
	ingredients string
	words       []string
	aliases     []string
}

func newView(e *core.Entity, parsed []core.RecipeIngredient) view {
	v := view{name: text.Fold(e.Name)}
	switch e.Kind {
	case core.EntityKindIngredient:
		folded := make([]string, 0, len(e.Aliases))
		for _, a := range e.Aliases {
			folded = append(folded, text.Fold(a))
		}
		v.aliases = folded
		v.ingredients = strings.Join(folded, " ")
		v.words = append([]string{e.Name}, e.Aliases...)
	default:
		v.ingredients = text.Fold(e.IngredientsText)
		v.words = append([]string{e.Name}, core.IngredientNames(parsed, len(parsed))...)
	}
	return v
}

// matchBonus scores how directly the entity answers term.
func (c *Config) matchBonus(kind core.EntityKind, term string, v view) float64 {
	q := text.Fold(term)
	if q == "" {
		return 0
	}
	if kind == core.EntityKindIngredient {
		switch {
		case q == v.name:
			return c.IngredientExactBonus
		case strings.Contains(v.name, q) || strings.Contains(q, v.name):
			return c.IngredientPartialBonus
		case containsAny(v.aliases, q):
			return c.AliasMatchBonus
		default:
			return 0
		}
	}

	switch {
	case q == v.name:
		return c.ExactNameBonus
	case strings.Contains(v.name, q):
		return c.NameContainsBonus
	case v.ingredients != "" && strings.Contains(v.ingredients, q):
		return c.IngredientsMatchBonus
	default:
		return text.WordOverlap(term, v.words...) * c.WordOverlapBonusWeight
	}
}

// verification returns how plausibly a vector hit relates to the query,
// in [0,1].
func (c *Config) verification(query string, v view) float64 {
	q := text.Fold(query)
	if q == "" {
		return c.UnrelatedFactor
	}
	if strings.Contains(v.name, q) || (v.ingredients != "" && strings.Contains(v.ingredients, q)) {
		return 1.0
	}
	if overlap := text.WordOverlap(query, v.words...); overlap > 0 {
		return max(overlap, c.MinOverlapFactor)
	}
	for _, group := range sortedKeys(c.CategoryRules) {
		keywords := c.CategoryRules[group]
		_, queryHit := text.ContainsAny(q, keywords)
		_, nameHit := text.ContainsAny(v.name, keywords)
		if queryHit && nameHit {
			return c.CategoryFactor
		}
	}
	return c.UnrelatedFactor
}

func containsAny(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
