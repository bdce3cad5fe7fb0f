package llm

import (
	"context"
	"fmt"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

// NewChatModel creates the appropriate ChatModel based on configuration.
func NewChatModel(ctx context.Context, cfg *config.LLMConfig) (core.ChatModel, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("precise_model", cfg.PreciseModel).
		Str("fast_model", cfg.FastModel).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "groq":
		return NewGroq(cfg.GroqAPIKey, cfg.Timeout), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Timeout), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Timeout), nil
	case "custom":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.CustomOpenAIBaseURL,
			APIKey:     cfg.CustomOpenAIAPIKey,
			Timeout:    cfg.Timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
