package retrieval

import (
	"strings"

	"github.com/poiesic/recipesearch/text"
)

// DefaultIngredientMarkers are words that signal the user is looking for
// dishes made from an ingredient, as in "감자 요리".
var DefaultIngredientMarkers = []string{"요리", "음식", "레시피", "만들기"}

// extraStrip is removed from the core term but does not mark intent by itself.
const extraStrip = "활용"

// IngredientIntent reports whether query seeks dishes built from an
// ingredient and returns the core term with the markers removed.
// When no marker is present the trimmed query is returned with ok=false.
func IngredientIntent(query string, markers []string) (term string, ok bool) {
	term = strings.TrimSpace(query)
	if _, found := text.ContainsAny(term, markers); !found {
		return term, false
	}
	for _, marker := range markers {
		term = strings.ReplaceAll(term, marker, "")
	}
	term = strings.ReplaceAll(term, extraStrip, "")
	return strings.Join(strings.Fields(term), " "), true
}
