package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeScope/internal/config"
	"stakeScope/internal/pipeline"
	"stakeScope/internal/report"
	"stakeScope/internal/storage"
)

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
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

	var opts []pipeline.Option
	var events *storage.JsonlStorage
	if cfg.EventsOut != "" {
		events = storage.NewJsonlStorage(cfg.EventsOut)
		if err := events.Reset(); err != nil {
			return err
		}
		opts = append(opts, pipeline.WithEventSink(events))
	}

	runner, cleanup, err := buildRunner(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if events != nil {
		logger.Info("events written", zap.String("path", events.Path()), zap.Int("events", result.Stats.Decoded))
	}
	if cfg.JSONOut != "" {
		if err := storage.NewJSONFile(cfg.JSONOut).Save(result); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", cfg.JSONOut))
	}

	if err := report.WriteConsole(cmd.OutOrStdout(), result, cfg.TokenDecimals); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if result.Partial() {
		logger.Warn("report is partial", zap.Int("failed_page", result.Fetch.Failure.Page), zap.String("reason", result.Fetch.Failure.Reason))
	}
	return nil
}
