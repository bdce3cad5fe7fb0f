package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type CacheConfig struct {
	TTL     time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	MaxSize int           `env:"CACHE_MAX_SIZE" envDefault:"128"`

	// Persist toggles the sqlite-backed layer under the in-memory one.
	Persist bool `env:"CACHE_PERSIST" envDefault:"true"`
}

func NewCacheConfig(ctx context.Context) *CacheConfig {
	c := &CacheConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Cache config")
	}
	return c
}
