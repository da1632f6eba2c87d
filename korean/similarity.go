package korean

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditSimilarity returns 1 - distance/maxLen for the rune-level Levenshtein
// distance of a and b. It is 0 when either string is empty or when the
// lengths differ by more than half the longer one.
func EditSimilarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	longest := max(la, lb)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > longest/2 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
