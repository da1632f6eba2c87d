package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/recipesearch/ai"
)

// Judge implements ai.Judge using OpenAI-compatible chat APIs.
type Judge struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// maxParseAttempts bounds re-asking the model after a malformed response.
const maxParseAttempts = 3

// newJudge is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newJudge(config *ai.Config) (*Judge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.JudgeHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.JudgeModel),
	)
	if err != nil {
		return nil, err
	}

	return &Judge{
		client:      client,
		temperature: config.JudgeTemperature,
		logger:      slog.Default().With("component", "openai-judge"),
	}, nil
}

// NewJudge creates a new relevance judge using the provided configuration.
//
// Returns ai.Judge interface to enforce abstraction.
func NewJudge(config *ai.Config) (ai.Judge, error) {
	return newJudge(config)
}

// ScoreBatch asks the model to rate each item against the query.
func (j *Judge) ScoreBatch(ctx context.Context, query string, items []ai.JudgeItem) (ai.Verdict, error) {
	if len(items) == 0 {
		return ai.Verdict{Scores: []float64{}}, nil
	}
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(judgeSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildJudgePrompt(scrubString(query), items))},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var responseText string
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := j.client.GenerateContent(ctx, content,
			llms.WithTemperature(j.temperature), llms.WithJSONMode())
		if err != nil {
			j.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return ai.Verdict{}, err
		}

		if len(response.Choices) < 1 {
			j.logger.Debug("no choices returned from model")
			break
		}

		responseText = repairJSON(stripFences(response.Choices[0].Content))
		verdict, ok := ai.ParseVerdict(responseText, len(items))
		if ok {
			j.logger.Debug("scored batch",
				"query", query,
				"items", len(items),
				"scores", verdict.Scores,
				"suggested_threshold", verdict.SuggestedThreshold)
			return verdict, nil
		}
		j.logger.Warn("error parsing judge response", "attempt", attempt+1, "response", responseText)
	}

	j.logger.Warn("judge response unusable, using neutral scores", "query", query, "response", responseText)
	verdict, _ := ai.ParseVerdict("", len(items))
	return verdict, nil
}

// stripFences removes markdown code fences around a JSON body.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
