package korean

// adjacentKeys maps a consonant to its neighbours on the two-set keyboard.
var adjacentKeys = map[rune][]rune{
	'ㅂ': {'ㅁ', 'ㅃ', 'ㅍ'},
	'ㅁ': {'ㅂ', 'ㄴ'},
	'ㄴ': {'ㅁ', 'ㅇ'},
	'ㅇ': {'ㄴ', 'ㄹ'},
	'ㄹ': {'ㅇ', 'ㅎ'},
	'ㅎ': {'ㄹ', 'ㅋ'},
	'ㅋ': {'ㅎ', 'ㅌ'},
	'ㅌ': {'ㅋ', 'ㅊ'},
	'ㅊ': {'ㅌ', 'ㅈ'},
	'ㅈ': {'ㅊ', 'ㅅ'},
	'ㅅ': {'ㅈ', 'ㄷ'},
	'ㄷ': {'ㅅ', 'ㄱ'},
	'ㄱ': {'ㄷ', 'ㅂ'},
}

// Suggestions returns up to limit alternative spellings of text. The
// recomposed form of split jamo comes first, followed by single keyboard
// adjacency substitutions applied to standalone consonants and to the
// initial consonant of syllables. The input itself is never suggested.
func Suggestions(text string, limit int) []string {
	if limit <= 0 || text == "" {
		return nil
	}
	seen := map[string]struct{}{text: {}}
	out := make([]string, 0, limit)
	add := func(s string) bool {
		if _, ok := seen[s]; ok {
			return len(out) < limit
		}
		seen[s] = struct{}{}
		out = append(out, s)
		return len(out) < limit
	}

	if ContainsJamo(text) {
		if composed := Recompose(stripSpaceIfJamoOnly(text)); !add(composed) {
			return out
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		if neighbours, ok := adjacentKeys[r]; ok {
			for _, n := range neighbours {
				if !add(replaceAt(runes, i, n)) {
					return out
				}
			}
			continue
		}
		initial, medial, final, ok := Decompose(r)
		if !ok {
			continue
		}
		for _, n := range adjacentKeys[initial] {
			syllable, ok := Compose(n, medial, final)
			if !ok {
				continue
			}
			if !add(replaceAt(runes, i, syllable)) {
				return out
			}
		}
	}
	return out
}

func replaceAt(runes []rune, i int, r rune) string {
	cp := make([]rune, len(runes))
	copy(cp, runes)
	cp[i] = r
	return string(cp)
}

func stripSpaceIfJamoOnly(s string) string {
	if !IsJamoOnly(s) {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
