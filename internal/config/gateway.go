package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type GatewayConfig struct {
	// ContextTokenBudget caps how many context tokens fit into a prompt.
	ContextTokenBudget int `env:"GATEWAY_CONTEXT_TOKENS" envDefault:"2000"`
	MaxTokens          int `env:"GATEWAY_MAX_TOKENS" envDefault:"1024"`

	PreciseTemperature float64 `env:"GATEWAY_PRECISE_TEMPERATURE" envDefault:"0.1"`
	FastTemperature    float64 `env:"GATEWAY_FAST_TEMPERATURE" envDefault:"0.3"`

	// Queries longer than this many tokens route to the precise profile.
	RouteLengthTokens int `env:"GATEWAY_ROUTE_LENGTH_TOKENS" envDefault:"40"`
}

func NewGatewayConfig(ctx context.Context) *GatewayConfig {
	c := &GatewayConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gateway config")
	}
	return c
}
