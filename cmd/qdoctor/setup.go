package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/qdoctor/agent/internal/cache"
	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/internal/gateway"
	"github.com/qdoctor/agent/internal/guard"
	"github.com/qdoctor/agent/internal/pipeline"
	"github.com/qdoctor/agent/internal/providers/embed"
	"github.com/qdoctor/agent/internal/providers/llm"
	"github.com/qdoctor/agent/internal/retriever"
	"github.com/qdoctor/agent/internal/scorer"
	"github.com/qdoctor/agent/internal/storage/sqlite"
	"github.com/qdoctor/agent/internal/transport/httpapi"
	"github.com/qdoctor/agent/pkg/log"
	"github.com/qdoctor/agent/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	appCfg := config.NewAppConfig(ctx)
	if err := initEnv(ctx, appCfg.RuntimePath); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	llmCfg := config.NewLLMConfig(ctx)
	retrCfg := config.NewRetrieverConfig(ctx)
	cacheCfg := config.NewCacheConfig(ctx)
	scorerCfg := config.NewScorerConfig(ctx)
	gwCfg := config.NewGatewayConfig(ctx)

	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	chunkRepo := sqlite.NewChunkRepo(db)
	responseCache := initCache(db, cacheCfg)

	chatModel, err := llm.NewChatModel(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	embedder, err := embed.NewEmbedder(ctx, retrCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	orchestrator := pipeline.New(pipeline.Deps{
		Cache:       responseCache,
		Retriever:   retriever.New(embedder, chunkRepo, retrCfg.TopK, retrCfg.MinScore, retrCfg.Timeout),
		InputGuard:  guard.NewInputGuardrail(),
		Generator:   gateway.New(chatModel, gwCfg, llmCfg),
		Scorer:      scorer.NewLexical(),
		OutputGuard: guard.NewOutputGuardrail(),
	}, scorerCfg, llmCfg.MaxConcurrent)

	services = append(services, httpapi.NewServer(ctx, orchestrator, appCfg.ListenAddr))

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0o755); err != nil {
		return nil, err
	}
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

// initCache builds the layered response cache. Persistence off means the
// in-memory layer runs alone.
func initCache(db *sql.DB, cfg *config.CacheConfig) core.CacheStore {
	l1 := cache.NewMemory(cfg.TTL, cfg.MaxSize)

	var l2 core.CacheStore
	if cfg.Persist {
		l2 = sqlite.NewCacheRepo(db, cfg.TTL)
	}
	return cache.NewLayered(l1, l2)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
