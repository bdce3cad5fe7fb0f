package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type ScorerConfig struct {
	// Threshold is the minimum consistency a draft needs to skip regeneration.
	Threshold  float64 `env:"SCORER_THRESHOLD" envDefault:"0.6"`
	MaxRetries int     `env:"SCORER_MAX_RETRIES" envDefault:"1"`
}

func NewScorerConfig(ctx context.Context) *ScorerConfig {
	c := &ScorerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Scorer config")
	}
	return c
}
