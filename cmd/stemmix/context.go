package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/whomstve123/mixing-api/internal/config"
	"github.com/whomstve123/mixing-api/internal/fetch"
	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/mixer"
	"github.com/whomstve123/mixing-api/internal/mixing"
	"github.com/whomstve123/mixing-api/internal/scratch"
	"github.com/whomstve123/mixing-api/internal/storage"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// cliLogger logs to stderr so command output on stdout stays clean.
func (c *commandContext) cliLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
}

type pipelineOptions struct {
	allowLocal bool
}

// buildPipeline wires the fetcher, mixer and scratch directory from cfg. The
// returned Dir is shared with the sweeper so running requests are skipped.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts pipelineOptions) (*mixing.Pipeline, *scratch.Dir, error) {
	dir, err := scratch.Open(cfg.Paths.ScratchDir)
	if err != nil {
		return nil, nil, err
	}

	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithTimeout(cfg.FetchTimeout()),
		fetch.WithLocalSources(opts.allowLocal),
		fetch.WithLogger(logger),
	}
	if cfg.Storage.Enabled {
		client, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage: %w", err)
		}
		fetchOpts = append(fetchOpts, fetch.WithObjectStore(client))
	}

	return mixing.NewPipeline(dir,
		fetch.New(fetchOpts...),
		mixer.New(cfg.FFmpeg.Binary, logger),
		logger,
	), dir, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
