package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeScope/internal/config"
	"stakeScope/internal/metrics"
	"stakeScope/internal/pipeline"
	"stakeScope/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	runner, cleanup, err := buildRunner(ctx, cfg.Config, logger, pipeline.WithMetrics(recorder))
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	srv := server.New(runner, cfg.CacheTTL, recorder.Handler(), logger)
	return srv.ListenAndServe(ctx, cfg.Listen)
}
