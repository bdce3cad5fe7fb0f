package embed

import (
	"context"
	"fmt"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

// NewEmbedder creates the embedding client the retriever and ingester share.
func NewEmbedder(ctx context.Context, cfg *config.RetrieverConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.EmbedProvider).
		Str("model", cfg.EmbedModel).
		Msg("starting embedding provider")

	switch cfg.EmbedProvider {
	case "ollama":
		return NewOllama(cfg.EmbedBaseURL, cfg.EmbedAPIKey, cfg.EmbedModel, cfg.Timeout), nil
	case "openai":
		return NewOpenAICompatible("https://api.openai.com", cfg.EmbedAPIKey, cfg.EmbedModel, cfg.Timeout), nil
	case "custom":
		return NewOpenAICompatible(cfg.EmbedBaseURL, cfg.EmbedAPIKey, cfg.EmbedModel, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbedProvider)
	}
}
