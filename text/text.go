package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Stop words to filter out when extracting query keywords
var stopWords = map[string]bool{
	"요리": true, "음식": true, "레시피": true, "만들기": true, "활용": true,
	"간단": true, "쉬운": true, "the": true, "a": true, "an": true, "and": true,
	"of": true, "with": true,
}

// Fold returns s in the canonical form used for all comparisons:
// NFC-normalized, lowercased and trimmed.
func Fold(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

// Words splits folded text on whitespace.
func Words(s string) []string {
	return strings.Fields(Fold(s))
}

// Keywords splits text into words, trims punctuation, and removes stop words
func Keywords(s string) []string {
	words := Words(s)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.Trim(word, ".,!?;:'\"-()[]{}")
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// WordOverlap returns the fraction of distinct query words that appear as whole
// words in any of the given fields. Returns 0 for an empty query.
func WordOverlap(query string, fields ...string) float64 {
	queryWords := wordSet(Words(query))
	if len(queryWords) == 0 {
		return 0
	}

	fieldWords := make(map[string]bool)
	for _, field := range fields {
		for _, w := range Words(field) {
			fieldWords[w] = true
		}
	}

	common := 0
	for w := range queryWords {
		if fieldWords[w] {
			common++
		}
	}
	return float64(common) / float64(len(queryWords))
}

// KeywordOverlap is WordOverlap restricted to query keywords.
func KeywordOverlap(query string, fields ...string) float64 {
	keywords := wordSet(Keywords(query))
	if len(keywords) == 0 {
		return 0
	}

	fieldWords := make(map[string]bool)
	for _, field := range fields {
		for _, w := range Keywords(field) {
			fieldWords[w] = true
		}
	}

	common := 0
	for w := range keywords {
		if fieldWords[w] {
			common++
		}
	}
	return float64(common) / float64(len(keywords))
}

// ContainsAny reports whether s contains any of the given terms.
// It returns the first matching term.
func ContainsAny(s string, terms []string) (string, bool) {
	for _, term := range terms {
		if term != "" && strings.Contains(s, term) {
			return term, true
		}
	}
	return "", false
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
