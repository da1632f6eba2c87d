package ai

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// DefaultJudgeScore is the neutral score used when the judge gives none.
const DefaultJudgeScore = 50.0

// FormatJudgeItems renders items as the numbered list shown to the judge:
// "i. name (category) - ingredients".
func FormatJudgeItems(items []JudgeItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, item.Name)
		if item.Category != "" {
			fmt.Fprintf(&b, " (%s)", item.Category)
		}
		if len(item.Ingredients) > 0 {
			fmt.Fprintf(&b, " - %s", strings.Join(item.Ingredients, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SuggestedThresholdKey is the response key under which the judge proposes
// an acceptance threshold in [0,1] for the query.
const SuggestedThresholdKey = "suggested_threshold"

// Verdict is the judge's answer for one batch.
type Verdict struct {
	// Scores holds one relevance score in [0,100] per item, in item order.
	Scores []float64

	// SuggestedThreshold is the threshold the judge proposed for the query,
	// in (0,1]. Zero means it proposed none.
	SuggestedThreshold float64
}

// HasSuggestion reports whether the judge proposed a threshold.
func (v Verdict) HasSuggestion() bool {
	return v.SuggestedThreshold > 0
}

// ParseVerdict reads a JSON object mapping 1-based positions to scores,
// e.g. {"1": 85, "2": "72", "suggested_threshold": 0.5}, into n scores
// clamped to [0,100].
// Malformed entries and missing positions score DefaultJudgeScore. A
// suggested threshold outside (0,1] is ignored. ok is false when the body is
// not a JSON object, in which case every item scores DefaultJudgeScore.
func ParseVerdict(body string, n int) (verdict Verdict, ok bool) {
	verdict.Scores = make([]float64, n)
	for i := range verdict.Scores {
		verdict.Scores[i] = DefaultJudgeScore
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return verdict, false
	}
	for key, value := range raw {
		key = strings.TrimSpace(key)
		if key == SuggestedThresholdKey {
			if t, valid := toNumber(value); valid && t > 0 && t <= 1 {
				verdict.SuggestedThreshold = t
			}
			continue
		}
		pos, err := strconv.Atoi(key)
		if err != nil || pos < 1 || pos > n {
			continue
		}
		if score, valid := toNumber(value); valid {
			verdict.Scores[pos-1] = max(0, min(score, 100))
		}
	}
	return verdict, true
}

// toNumber accepts finite JSON numbers and numeric strings.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
