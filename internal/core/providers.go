package core

import "context"

// ChatModel produces a completion for a prompt pair against a named model.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever finds context chunks relevant to a query, similarity descending.
// No relevant context is an empty slice, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, queryText string) ([]ContextChunk, error)
}

// InputGuard validates a raw query before it reaches any model.
type InputGuard interface {
	Validate(text string) InputVerdict
}

type InputVerdict struct {
	Safe     bool
	Text     string // sanitized text when safe
	Redacted bool
	Reason   string // populated when unsafe
}

// Generator assembles a prompt and produces a draft answer.
// Feedback is non-empty on regeneration attempts.
type Generator interface {
	Generate(ctx context.Context, q SanitizedQuery, chunks []ContextChunk, feedback string) (Draft, error)
}

// Scorer rates how well a draft is supported by its context, in [0,1].
type Scorer interface {
	Score(draft Draft, chunks []ContextChunk) float64
}

// OutputGuard validates a draft before it leaves the pipeline.
type OutputGuard interface {
	Validate(draftText string, chunks []ContextChunk) OutputVerdict
}

type OutputVerdict struct {
	Valid  bool
	Text   string // the draft when valid, the fixed fallback otherwise
	Reason string
}

// CacheStore maps a normalized-query key to a validated response.
// Absence is (_, false, nil). An unavailable backend degrades to a miss.
type CacheStore interface {
	Get(ctx context.Context, key string) (FinalResponse, bool, error)
	Set(ctx context.Context, key string, resp FinalResponse) error
	Invalidate(ctx context.Context, key string) error
	Purge(ctx context.Context) error
}

// ChunkIndex is the document index the retriever searches and the ingester
// populates.
type ChunkIndex interface {
	SaveChunk(ctx context.Context, chunk StoredChunk) error
	HasChunk(ctx context.Context, id string) (bool, error)
	AllChunks(ctx context.Context) ([]StoredChunk, error)
}
