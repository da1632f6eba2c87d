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


package openai

// repairJSON attempts to fix common JSON formatting issues from LLM responses.
// It quotes bare keys such as {1: 85} and fixes keys that lost their opening
// quote such as {1": 85}.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+32)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++
		for i < len(result) && isSpace(result[i]) {
			fixed = append(fixed, result[i])
			i++
		}
		if i >= len(result) || !isKeyRune(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && isKeyRune(result[i]) {
			i++
		}
		key := result[keyStart:i]

		switch {
		case i+1 < len(result) && result[i] == '"' && result[i+1] == ':':
			// Missing opening quote; the closing quote is copied next pass
			fixed = append(fixed, '"')
			fixed = append(fixed, key...)
		case nextNonSpace(result, i) == ':':
			fixed = append(fixed, '"')
			fixed = append(fixed, key...)
			fixed = append(fixed, '"')
		default:
			fixed = append(fixed, key...)
		}
	}

	return string(fixed)
}

func nextNonSpace(runes []rune, i int) rune {
	for i < len(runes) && isSpace(runes[i]) {
		i++
	}
	if i >= len(runes) {
		return 0
	}
	return runes[i]
}
