package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/recipesearch/ai"
	"github.com/poiesic/recipesearch/text"
)

// MockJudge is a test double for ai.Judge.
// It allows custom behavior injection via function fields.
type MockJudge struct {
	// ScoreBatchFunc is called by ScoreBatch if set.
	// If nil, items score by keyword overlap with the query.
	ScoreBatchFunc func(ctx context.Context, query string, items []ai.JudgeItem) (ai.Verdict, error)

	mu        sync.Mutex
	callCount int
	queries   []string
}

var _ ai.Judge = (*MockJudge)(nil)

// NewMockJudge creates a mock judge with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockJudge().
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// WithScoreBatchFunc sets ScoreBatchFunc and returns the mock for chaining.
func (m *MockJudge) WithScoreBatchFunc(fn func(ctx context.Context, query string, items []ai.JudgeItem) (ai.Verdict, error)) *MockJudge {
	m.ScoreBatchFunc = fn
	return m
}

// ScoreBatch scores items against query.
// Default behavior: 90 for names containing the query, otherwise 100 times
// the keyword overlap between query and name. No threshold is suggested.
func (m *MockJudge) ScoreBatch(ctx context.Context, query string, items []ai.JudgeItem) (ai.Verdict, error) {
	m.mu.Lock()
	m.callCount++
	m.queries = append(m.queries, query)
	fn := m.ScoreBatchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, items)
	}

	scores := make([]float64, len(items))
	q := text.Fold(query)
	for i, item := range items {
		name := text.Fold(item.Name)
		if q != "" && strings.Contains(name, q) {
			scores[i] = 90
			continue
		}
		scores[i] = 100 * text.KeywordOverlap(query, item.Name)
	}
	return ai.Verdict{Scores: scores}, nil
}

// CallCount returns the number of times ScoreBatch was called.
func (m *MockJudge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Queries returns the queries passed to ScoreBatch, in call order.
func (m *MockJudge) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Reset clears the call count and custom functions.
func (m *MockJudge) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.queries = nil
	m.ScoreBatchFunc = nil
}
