package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type IngestConfig struct {
	ChunkTokens   int `env:"INGEST_CHUNK_TOKENS" envDefault:"256"`
	OverlapTokens int `env:"INGEST_CHUNK_OVERLAP" envDefault:"50"`
}

func NewIngestConfig(ctx context.Context) *IngestConfig {
	c := &IngestConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Ingest config")
	}
	return c
}
