package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

// Retriever embeds a query and ranks indexed chunks by cosine similarity.
// Chunks below the relevance floor are dropped; an empty result is a valid
// outcome, not an error.
type Retriever struct {
	embedder core.Embedder
	index    core.ChunkIndex
	topK     int
	minScore float64
	timeout  time.Duration
}

func New(embedder core.Embedder, index core.ChunkIndex, topK int, minScore float64, timeout time.Duration) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		minScore: minScore,
		timeout:  timeout,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, queryText string) ([]core.ContextChunk, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	queryVec, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	stored, err := r.index.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load index: %v", core.ErrUpstream, err)
	}

	var ranked []core.ContextChunk
	for _, chunk := range stored {
		score := cosineSimilarity(queryVec, chunk.Embedding)
		if score < r.minScore {
			continue
		}
		ranked = append(ranked, core.ContextChunk{
			ID:      chunk.ID,
			Text:    chunk.Text,
			Source:  chunk.Source,
			Score:   score,
			Ordinal: chunk.Ordinal,
		})
	}

	// Similarity descending; equal scores keep index insertion order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Ordinal < ranked[j].Ordinal
	})

	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}

	log.FromCtx(ctx).Debug().
		Int("candidates", len(stored)).
		Int("returned", len(ranked)).
		Msg("retrieval complete")

	return ranked, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
