package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Judge rates how well candidate results match a search query.
// Implementations must be thread-safe for concurrent use.
type Judge interface {
	// ScoreBatch returns a verdict holding one relevance score in [0,100]
	// per item, in item order, and the threshold the model suggests for the
	// query, if any. Items the model did not score, or scored with a
	// non-numeric value, get DefaultJudgeScore. An unparseable response
	// scores every item DefaultJudgeScore without error.
	// Returns an error only when the model call itself fails.
	ScoreBatch(ctx context.Context, query string, items []JudgeItem) (Verdict, error)
}

// JudgeItem is the summary of one result shown to the judge.
type JudgeItem struct {
	Name        string
	Category    string
	Ingredients []string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Judge instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Judge returns the relevance judge.
	// The returned Judge is safe for concurrent use.
	Judge() Judge

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
