package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

// Ingester chunks documents, embeds new chunks and stores them in the index.
// Chunk IDs are content-position stable, so re-running ingestion over the
// same documents is a no-op.
type Ingester struct {
	embedder core.Embedder
	index    core.ChunkIndex
	cache    core.CacheStore
	cfg      *config.IngestConfig
}

type Stats struct {
	Documents int
	Chunks    int
	Added     int
	Skipped   int
}

func New(embedder core.Embedder, index core.ChunkIndex, cache core.CacheStore, cfg *config.IngestConfig) *Ingester {
	return &Ingester{
		embedder: embedder,
		index:    index,
		cache:    cache,
		cfg:      cfg,
	}
}

// Run ingests every document under root. When new chunks were added the
// response cache is purged, since cached answers may now be stale.
func (ing *Ingester) Run(ctx context.Context, root string) (Stats, error) {
	logger := log.FromCtx(ctx)

	docs, err := LoadDocuments(root)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Documents: len(docs)}
	chunkerCfg := ChunkerConfig{
		MaxTokens:     ing.cfg.ChunkTokens,
		OverlapTokens: ing.cfg.OverlapTokens,
	}

	for _, doc := range docs {
		chunks := ChunkText(doc.Text, chunkerCfg)
		stats.Chunks += len(chunks)

		for _, chunk := range chunks {
			id := chunkID(doc.Source, chunk.Index)

			exists, err := ing.index.HasChunk(ctx, id)
			if err != nil {
				return stats, fmt.Errorf("check chunk %s: %w", id, err)
			}
			if exists {
				stats.Skipped++
				continue
			}

			vec, err := ing.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return stats, fmt.Errorf("embed chunk %s: %w", id, err)
			}

			err = ing.index.SaveChunk(ctx, core.StoredChunk{
				ID:        id,
				Source:    doc.Source,
				Text:      chunk.Text,
				Embedding: vec,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				return stats, fmt.Errorf("save chunk %s: %w", id, err)
			}
			stats.Added++
		}

		logger.Info().Str("source", doc.Source).Int("chunks", len(chunks)).Msg("document ingested")
	}

	if stats.Added > 0 && ing.cache != nil {
		if err := ing.cache.Purge(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to purge response cache after ingest")
		} else {
			logger.Info().Msg("response cache purged, knowledge base changed")
		}
	}

	return stats, nil
}

func chunkID(source string, index int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", source, index)))
	return hex.EncodeToString(sum[:])
}
