// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Judge,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vec, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	judge := mock.NewMockJudge().
//	    WithScoreBatchFunc(func(ctx context.Context, query string, items []ai.JudgeItem) (ai.Verdict, error) {
//	        return ai.Verdict{Scores: []float64{90, 10}}, nil
//	    })
//
//	// Check call counts
//	count := judge.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockJudge: Scores items by keyword overlap between query and item name
//   - MockProvider: Aggregates mock embedder and judge
package mock
