package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"QDOCTOR_RUNTIME_PATH" envDefault:".qdoctor"`
	ListenAddr  string `env:"QDOCTOR_LISTEN_ADDR" envDefault:":8080"`

	// DocumentsPath is where the ingest command looks for knowledge-base files.
	DocumentsPath string `env:"QDOCTOR_DOCS_PATH" envDefault:"./documents"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "qdoctor.db")
}
