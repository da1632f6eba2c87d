package openai

import (
	"fmt"

	"github.com/poiesic/recipesearch/ai"
)

const judgeSystemPrompt = `당신은 음식 레시피의 관련성을 정확하게 평가하는 전문가입니다. ` +
	`사용자의 검색 의도를 파악하고 각 항목이 얼마나 적합한지 객관적으로 판단해주세요.`

const judgePromptTemplate = `사용자가 "%s"를 검색했습니다.

다음 항목들이 사용자의 검색 의도와 얼마나 관련이 있는지 0-100점으로 엄격하게 평가해주세요:

%s
평가 기준:
- 검색어와 이름의 직접적 연관성 (가장 중요)
- 재료의 유사성 및 적합성
- 요리 방식이나 카테고리의 관련성
- 사용자가 실제로 찾고 있을 가능성

점수 가이드라인:
- 90-100점: 완전히 일치하거나 밀접하게 관련된 항목
- 70-89점: 높은 관련성
- 50-69점: 보통 수준의 관련성
- 30-49점: 낮은 관련성
- 0-29점: 거의 무관하거나 전혀 다른 음식

이 검색어에 적절한 관련성 임계값(0.3-0.8)도 "suggested_threshold" 키로 제안해주세요.

Output ONLY valid JSON mapping each item number to an integer score, plus the
"suggested_threshold" key, with no preamble or explanation. Start your response
directly with { and end with }. Example for 5 items:
{"1": 85, "2": 72, "3": 15, "4": 90, "5": 8, "suggested_threshold": 0.5}

모든 항목이 비슷한 점수를 받지 않도록 차이를 두어 평가해주세요.`

// buildJudgePrompt creates the user prompt listing the items to score.
func buildJudgePrompt(query string, items []ai.JudgeItem) string {
	return fmt.Sprintf(judgePromptTemplate, query, ai.FormatJudgeItems(items))
}
