package storage

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/text"
)

// Term match weights.
const (
	exactTermWeight   = 1.0
	partialTermWeight = 0.75
	fuzzyTermWeight   = 0.5
	phraseWeight      = 2.0
)

// LexicalField is one searchable field with its boost.
type LexicalField struct {
	Name  string
	Text  string
	Boost float64
}

// LexicalFields returns the searchable fields of an entity: name^3,
// ingredients^2 and tags for recipes; name^2 and aliases for ingredients.
func LexicalFields(e *core.Entity) []LexicalField {
	switch e.Kind {
	case core.EntityKindRecipe:
		return []LexicalField{
			{Name: "name", Text: e.Name, Boost: 3},
			{Name: "ingredients", Text: e.IngredientsText, Boost: 2},
			{Name: "hashtag", Text: strings.Join(e.Tags, " "), Boost: 1},
		}
	case core.EntityKindIngredient:
		return []LexicalField{
			{Name: "name", Text: e.Name, Boost: 2},
			{Name: "aliases", Text: strings.Join(e.Aliases, " "), Boost: 1},
		}
	default:
		return nil
	}
}

// Tokenize splits folded text on whitespace and punctuation.
func Tokenize(s string) []string {
	return strings.FieldsFunc(text.Fold(s), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '|'
	})
}

// LexicalScore scores an entity against a query like a boosted multi-field
// match with automatic fuzziness. Each query term contributes its best token
// match per field: exact, partial (one contains the other), or within the
// allowed edit distance. A field equal to the whole query adds a phrase bonus.
// Returns 0 when nothing matches.
func LexicalScore(query string, e *core.Entity) float64 {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return 0
	}
	phrase := strings.Join(terms, " ")

	var score float64
	for _, field := range LexicalFields(e) {
		tokens := Tokenize(field.Text)
		if len(tokens) == 0 {
			continue
		}
		for _, term := range terms {
			score += field.Boost * termMatch(term, tokens)
		}
		if strings.Join(tokens, " ") == phrase {
			score += field.Boost * phraseWeight
		}
	}
	return score
}

func termMatch(term string, tokens []string) float64 {
	best := 0.0
	termLen := utf8.RuneCountInString(term)
	for _, tok := range tokens {
		if tok == term {
			return exactTermWeight
		}
		tokLen := utf8.RuneCountInString(tok)
		if min(termLen, tokLen) >= 2 && (strings.Contains(tok, term) || strings.Contains(term, tok)) {
			best = max(best, partialTermWeight)
			continue
		}
		if edits := allowedEdits(termLen); edits > 0 && abs(termLen-tokLen) <= edits {
			if levenshtein.ComputeDistance(term, tok) <= edits {
				best = max(best, fuzzyTermWeight)
			}
		}
	}
	return best
}

// allowedEdits mirrors AUTO fuzziness: none up to 2 runes, 1 up to 5, else 2.
func allowedEdits(runes int) int {
	switch {
	case runes <= 2:
		return 0
	case runes <= 5:
		return 1
	default:
		return 2
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// SortCandidates orders candidates by raw score descending, then id ascending.
func SortCandidates(results []*core.CandidateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RawScore != results[j].RawScore {
			return results[i].RawScore > results[j].RawScore
		}
		return results[i].Entity.Id < results[j].Entity.Id
	})
}
