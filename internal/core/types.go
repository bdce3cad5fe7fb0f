package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	AgentName      = "QDoctor"
	AgentUserAgent = "QDoctor-Agent/0.1"
	AgentVersion   = "0.1.0"
)

// Fixed user-visible messages. Guardrail rejections and coverage gaps must
// always surface the same text, never model output or raw errors.
const (
	MsgInsufficientContext = "I could not find relevant information in the knowledge base to answer this question."
	MsgValidationRejected  = "Your question could not be processed because it failed safety validation. Please rephrase it."
	MsgOutputFallback      = "The generated response did not pass safety checks. Please try rephrasing your question."
	MsgInternalError       = "Something went wrong while answering your question. Please try again."
)

// Query is the immutable inbound request.
type Query struct {
	Text       string    `json:"text"`
	SessionID  string    `json:"session_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// NormalizeQuery folds case and whitespace so that trivially different
// spellings of the same question share a cache key.
func NormalizeQuery(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// CacheKey is the sha256 hex digest of the normalized query text.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(text)))
	return hex.EncodeToString(sum[:])
}

// ContextChunk is one retrieved passage, ranked by similarity.
type ContextChunk struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Ordinal int64   `json:"ordinal"` // insertion order in the index, breaks score ties
}

// SanitizedQuery is the query after the input guardrail ran.
type SanitizedQuery struct {
	Query    Query
	Text     string // possibly redacted
	Redacted bool
}

// Draft is a generated answer before output validation.
type Draft struct {
	Text        string
	Context     []ContextChunk
	Included    []string // source labels of chunks that made it into the prompt
	Consistency float64
	Attempt     int
}

// FinalResponse is the validated pipeline output.
type FinalResponse struct {
	Text      string    `json:"text"`
	Sources   []string  `json:"sources"`
	Valid     bool      `json:"valid"`
	Cacheable bool      `json:"cacheable"`
	CreatedAt time.Time `json:"created_at"`
}

// CacheEntry is the persisted form of a validated response.
type CacheEntry struct {
	Key       string        `json:"key"`
	Response  FinalResponse `json:"response"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
}

// Expired reports whether the entry is past its TTL at the given time.
// Zero TTL means the entry never expires.
func (e CacheEntry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.After(e.CreatedAt.Add(e.TTL))
}

// StoredChunk is a document chunk as kept in the index.
type StoredChunk struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
	Ordinal   int64     `json:"ordinal"`
	CreatedAt time.Time `json:"created_at"`
}
