package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/whomstve123/mixing-api/internal/api"
	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/scratch"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mixing HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), ctx)
		},
	}
}

func runServer(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pipeline, dir, err := buildPipeline(signalCtx, cfg, logger, pipelineOptions{})
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		return err
	}
	server := api.NewServer(cfg, pipeline,
		api.WithVersion(version),
		api.WithLogger(logger),
	)
	sweeper := scratch.NewSweeper(dir, cfg.SweepInterval(), cfg.ScratchMaxAge(), logger)

	logger.Info("stemmix starting",
		logging.String("version", version),
		logging.String("config", ctx.configPath),
		logging.String("scratch_dir", cfg.Paths.ScratchDir),
		logging.String("ffmpeg", cfg.FFmpeg.Binary),
		logging.Bool("storage_enabled", cfg.Storage.Enabled),
	)

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error { return server.Run(groupCtx) })
	group.Go(func() error { return sweeper.Run(groupCtx) })
	if err := group.Wait(); err != nil {
		logger.Error("stemmix stopped with error", logging.Error(err))
		return err
	}
	logger.Info("stemmix stopped")
	return nil
}
