package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type RetrieverConfig struct {
	EmbedProvider string `env:"EMBEDDING_PROVIDER" envDefault:"ollama"`
	EmbedModel    string `env:"EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	EmbedBaseURL  string `env:"EMBEDDING_BASE_URL" envDefault:"http://localhost:11434"`
	EmbedAPIKey   string `env:"EMBEDDING_API_KEY"`

	TopK int `env:"RETRIEVER_TOP_K" envDefault:"3"`
	// MinScore is the relevance floor; chunks scoring below it are dropped.
	MinScore float64       `env:"RETRIEVER_MIN_SCORE" envDefault:"0.2"`
	Timeout  time.Duration `env:"RETRIEVER_TIMEOUT" envDefault:"10s"`
}

func NewRetrieverConfig(ctx context.Context) *RetrieverConfig {
	c := &RetrieverConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retriever config")
	}
	return c
}
