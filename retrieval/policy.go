package retrieval

import "github.com/poiesic/recipesearch/text"

// VectorPolicy decides whether a query needs embedding search on top of
// lexical search. The decision depends only on the query text and the
// lexical hit count.
type VectorPolicy struct {
	// SkipAtCount skips vector search once lexical search found this many hits.
	SkipAtCount int `mapstructure:"skip_at_count" validate:"gte=0"`

	// ForceBelowCount forces vector search when lexical search found fewer hits.
	ForceBelowCount int `mapstructure:"force_below_count" validate:"gte=0"`

	// SpecificTerms name concrete dishes and ingredients lexical search handles well.
	SpecificTerms []string `mapstructure:"specific_terms"`

	// SemanticTerms describe mood, occasion or taste and need embeddings.
	SemanticTerms []string `mapstructure:"semantic_terms"`
}

// DefaultVectorPolicy returns the tuned policy.
func DefaultVectorPolicy() VectorPolicy {
	return VectorPolicy{
		SkipAtCount:     8,
		ForceBelowCount: 3,
		SpecificTerms: []string{
			"라면", "파스타", "피자", "햄버거", "김치찌개", "된장찌개",
			"양파", "마늘", "돼지고기", "소고기", "닭고기", "신라면", "짜파게티",
		},
		SemanticTerms: []string{
			"따뜻한", "시원한", "매운", "달콤한", "건강한", "다이어트",
			"아침", "점심", "저녁", "야식", "간식", "술안주",
			"간단한", "빠른", "쉬운", "특별한", "고급", "집밥",
		},
	}
}

// VectorDecision records whether vector search runs and why.
type VectorDecision struct {
	Run    bool
	Reason string
}

// Decide applies the policy. Rules are checked in order: enough lexical
// hits, specific term, semantic term, too few lexical hits.
func (p VectorPolicy) Decide(query string, lexicalCount int) VectorDecision {
	if lexicalCount >= p.SkipAtCount {
		return VectorDecision{Run: false, Reason: "enough lexical results"}
	}
	if term, ok := text.ContainsAny(query, p.SpecificTerms); ok {
		return VectorDecision{Run: false, Reason: "specific term " + term}
	}
	if term, ok := text.ContainsAny(query, p.SemanticTerms); ok {
		return VectorDecision{Run: true, Reason: "semantic term " + term}
	}
	if lexicalCount < p.ForceBelowCount {
		return VectorDecision{Run: true, Reason: "few lexical results"}
	}
	return VectorDecision{Run: false, Reason: "lexical results sufficient"}
}
