package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/recipesearch/ai"
)

// scriptedModel replays canned responses in order.
type scriptedModel struct {
	responses []string
	err       error
	calls     int
	messages  []llms.MessageContent
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	body := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: body}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newTestJudge(model llms.Model) *Judge {
	return &Judge{client: model, temperature: 0.3, logger: slog.Default()}
}

var judgeItems = []ai.JudgeItem{
	{Name: "김치찌개", Category: "찌개", Ingredients: []string{"김치", "돼지고기"}},
	{Name: "된장찌개", Category: "찌개"},
	{Name: "불고기"},
}

func TestJudge_ScoreBatch(t *testing.T) {
	model := &scriptedModel{responses: []string{"```json\n{\"1\": 95, \"2\": 40, \"3\": 5, \"suggested_threshold\": 0.6}\n```"}}
	judge := newTestJudge(model)

	verdict, err := judge.ScoreBatch(context.Background(), "김치찌개", judgeItems)
	require.NoError(t, err)
	assert.Equal(t, []float64{95, 40, 5}, verdict.Scores)
	assert.Equal(t, 0.6, verdict.SuggestedThreshold)
	assert.Equal(t, 1, model.calls)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	prompt := model.messages[1].Parts[0].(llms.TextContent).Text
	assert.Contains(t, prompt, `"김치찌개"`)
	assert.Contains(t, prompt, "1. 김치찌개 (찌개) - 김치, 돼지고기")
	assert.Contains(t, prompt, "3. 불고기")
	assert.Contains(t, prompt, `"suggested_threshold"`)
}

func TestJudge_RepairsBareKeys(t *testing.T) {
	model := &scriptedModel{responses: []string{`{1: 80, 2: 60, 3: 20}`}}
	verdict, err := newTestJudge(model).ScoreBatch(context.Background(), "찌개", judgeItems)
	require.NoError(t, err)
	assert.Equal(t, []float64{80, 60, 20}, verdict.Scores)
}

func TestJudge_RetriesMalformedResponse(t *testing.T) {
	model := &scriptedModel{responses: []string{"not json", `{"1": 70, "2": 30, "3": 10}`}}
	verdict, err := newTestJudge(model).ScoreBatch(context.Background(), "찌개", judgeItems)
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 30, 10}, verdict.Scores)
	assert.Equal(t, 2, model.calls)
}

func TestJudge_UnusableResponseScoresNeutral(t *testing.T) {
	model := &scriptedModel{responses: []string{"I cannot rate these."}}
	verdict, err := newTestJudge(model).ScoreBatch(context.Background(), "찌개", judgeItems)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 50, 50}, verdict.Scores)
	assert.Equal(t, maxParseAttempts, model.calls)
}

func TestJudge_ModelError(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	_, err := newTestJudge(model).ScoreBatch(context.Background(), "찌개", judgeItems)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
}

func TestJudge_EmptyItems(t *testing.T) {
	model := &scriptedModel{}
	verdict, err := newTestJudge(model).ScoreBatch(context.Background(), "찌개", nil)
	require.NoError(t, err)
	assert.Empty(t, verdict.Scores)
	assert.Zero(t, model.calls)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Judge())
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithJudgeModel("")))
	assert.Error(t, err)
}
