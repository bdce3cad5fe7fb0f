package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/qdoctor/agent/internal/config"
	"github.com/qdoctor/agent/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "qdoctor",
	Short: "QDoctor — clinical knowledge-base assistant",
	Long:  `QDoctor answers questions from an indexed clinical knowledge base, with guardrails on both input and output.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
