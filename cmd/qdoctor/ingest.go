package main

import (
	"github.com/spf13/cobra"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/internal/ingest"
	"github.com/qdoctor/agent/internal/providers/embed"
	"github.com/qdoctor/agent/internal/storage/sqlite"
	"github.com/qdoctor/agent/pkg/log"
)

var ingestCmd = &cobra.Command{
	Use:           "ingest",
	Short:         "Index knowledge-base documents",
	Long:          `Chunks, embeds and indexes the .txt and .md files in the documents directory. Already indexed chunks are skipped; the response cache is purged when new content lands.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		appCfg := config.NewAppConfig(ctx)
		if err := initEnv(ctx, appCfg.RuntimePath); err != nil {
			return err
		}
		retrCfg := config.NewRetrieverConfig(ctx)
		cacheCfg := config.NewCacheConfig(ctx)
		ingestCfg := config.NewIngestConfig(ctx)

		db, err := initStorage(ctx, appCfg)
		if err != nil {
			return err
		}
		defer db.Close()

		embedder, err := embed.NewEmbedder(ctx, retrCfg)
		if err != nil {
			return err
		}

		var responseCache core.CacheStore
		if cacheCfg.Persist {
			responseCache = sqlite.NewCacheRepo(db, cacheCfg.TTL)
		}
		ing := ingest.New(embedder, sqlite.NewChunkRepo(db), responseCache, ingestCfg)

		logger.Info().Str("path", appCfg.DocumentsPath).Msg("ingesting documents")
		stats, err := ing.Run(ctx, appCfg.DocumentsPath)
		if err != nil {
			return err
		}

		logger.Info().
			Int("documents", stats.Documents).
			Int("chunks", stats.Chunks).
			Int("added", stats.Added).
			Int("skipped", stats.Skipped).
			Msg("ingestion complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
