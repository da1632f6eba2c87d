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


// Package korean repairs Korean query text before retrieval.
//
// It recomposes split compatibility jamo into syllables, proposes keyboard
// adjacency typo suggestions and corrects typos against the index through a
// fuzzy lookup.
package korean

import "unicode/utf8"

const (
	syllableBase  = 0xAC00
	syllableLast  = 0xD7A3
	medialCount   = 21
	finalCount    = 28
	jamoFirst     = 0x3131 // ㄱ
	jamoLastCons  = 0x314E // ㅎ
	jamoFirstVow  = 0x314F // ㅏ
	jamoLast      = 0x3163 // ㅣ
	defaultMedial = 'ㅡ'
	defaultInit   = 'ㅇ'
)

var initials = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

var medials = []rune{
	'ㅏ', 'ㅐ', 'ㅑ', 'ㅒ', 'ㅓ', 'ㅔ', 'ㅕ', 'ㅖ', 'ㅗ', 'ㅘ', 'ㅙ',
	'ㅚ', 'ㅛ', 'ㅜ', 'ㅝ', 'ㅞ', 'ㅟ', 'ㅠ', 'ㅡ', 'ㅢ', 'ㅣ',
}

// finals[0] is the empty final.
var finals = []rune{
	0, 'ㄱ', 'ㄲ', 'ㄳ', 'ㄴ', 'ㄵ', 'ㄶ', 'ㄷ', 'ㄹ', 'ㄺ', 'ㄻ', 'ㄼ', 'ㄽ', 'ㄾ',
	'ㄿ', 'ㅀ', 'ㅁ', 'ㅂ', 'ㅄ', 'ㅅ', 'ㅆ', 'ㅇ', 'ㅈ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

var (
	initialIndex = indexOf(initials, 0)
	medialIndex  = indexOf(medials, 0)
	finalIndex   = indexOf(finals[1:], 1)
)

func indexOf(runes []rune, base int) map[rune]int {
	m := make(map[rune]int, len(runes))
	for i, r := range runes {
		m[r] = i + base
	}
	return m
}

// IsJamo reports whether r is a standalone compatibility jamo.
func IsJamo(r rune) bool {
	return r >= jamoFirst && r <= jamoLast
}

// IsConsonant reports whether r is a compatibility consonant jamo.
func IsConsonant(r rune) bool {
	return r >= jamoFirst && r <= jamoLastCons
}

// IsVowel reports whether r is a compatibility vowel jamo.
func IsVowel(r rune) bool {
	return r >= jamoFirstVow && r <= jamoLast
}

// IsSyllable reports whether r is a precomposed Hangul syllable.
func IsSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableLast
}

// IsJamoOnly reports whether s consists entirely of compatibility jamo and
// whitespace, with at least one jamo.
func IsJamoOnly(s string) bool {
	found := false
	for _, r := range s {
		switch {
		case IsJamo(r):
			found = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			return false
		}
	}
	return found
}

// ContainsJamo reports whether s has at least one standalone jamo.
func ContainsJamo(s string) bool {
	for _, r := range s {
		if IsJamo(r) {
			return true
		}
	}
	return false
}

// Decompose splits a syllable into its initial, medial and final jamo.
// The final is 0 when the syllable has none.
func Decompose(r rune) (initial, medial, final rune, ok bool) {
	if !IsSyllable(r) {
		return 0, 0, 0, false
	}
	code := int(r - syllableBase)
	return initials[code/(medialCount*finalCount)],
		medials[(code%(medialCount*finalCount))/finalCount],
		finals[code%finalCount],
		true
}

// DecomposeString expands every syllable in s into its jamo.
// Other runes are copied unchanged.
func DecomposeString(s string) string {
	out := make([]rune, 0, utf8.RuneCountInString(s)*3)
	for _, r := range s {
		i, m, f, ok := Decompose(r)
		if !ok {
			out = append(out, r)
			continue
		}
		out = append(out, i, m)
		if f != 0 {
			out = append(out, f)
		}
	}
	return string(out)
}

// Compose builds a syllable from jamo. final may be 0.
func Compose(initial, medial, final rune) (rune, bool) {
	i, ok := initialIndex[initial]
	if !ok {
		return 0, false
	}
	m, ok := medialIndex[medial]
	if !ok {
		return 0, false
	}
	f := 0
	if final != 0 {
		if f, ok = finalIndex[final]; !ok {
			return 0, false
		}
	}
	return rune(syllableBase + (i*medialCount+m)*finalCount + f), true
}

// Recompose joins runs of standalone jamo in s into syllables. Syllables and
// other runes pass through. A consonant without a following vowel takes the
// medial ㅡ and a vowel without a preceding consonant takes the initial ㅇ.
// A consonant after a vowel becomes the final unless a vowel follows it.
// Runs of a single jamo are left as they are.
func Recompose(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); {
		if !IsJamo(runes[i]) {
			out = append(out, runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && IsJamo(runes[j]) {
			j++
		}
		if j-i < 2 {
			out = append(out, runes[i:j]...)
		} else {
			out = append(out, composeRun(runes[i:j])...)
		}
		i = j
	}
	return string(out)
}

func composeRun(run []rune) []rune {
	out := make([]rune, 0, len(run))
	for i := 0; i < len(run); {
		initial, medial := run[i], rune(0)
		next := i + 1
		switch {
		case IsVowel(initial):
			medial, initial = initial, defaultInit
		case next < len(run) && IsVowel(run[next]):
			medial = run[next]
			next++
		default:
			medial = defaultMedial
		}
		var final rune
		if next < len(run) && IsConsonant(run[next]) {
			if _, ok := finalIndex[run[next]]; ok && (next+1 >= len(run) || !IsVowel(run[next+1])) {
				final = run[next]
				next++
			}
		}
		syllable, ok := Compose(initial, medial, final)
		if !ok {
			out = append(out, run[i])
			i++
			continue
		}
		out = append(out, syllable)
		i = next
	}
	return out
}
