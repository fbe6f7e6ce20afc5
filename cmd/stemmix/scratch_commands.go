package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/whomstve123/mixing-api/internal/scratch"
)

func newScratchCommand(ctx *commandContext) *cobra.Command {
	scratchCmd := &cobra.Command{
		Use:   "scratch",
		Short: "Inspect and clean the scratch directory",
	}
	scratchCmd.AddCommand(newScratchListCommand(ctx))
	scratchCmd.AddCommand(newScratchCleanCommand(ctx))
	return scratchCmd
}

func newScratchListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List files in the scratch directory, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			files, err := scratch.List(cfg.Paths.ScratchDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "Scratch directory %s is empty\n", cfg.Paths.ScratchDir)
				return nil
			}

			var total int64
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				total += f.Size
				rows = append(rows, []string{f.Name, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime)})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Size", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d files, %s\n", len(files), humanize.Bytes(uint64(total)))
			return nil
		},
	}
}

func newScratchCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove scratch files older than the max age",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.cliLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			age := maxAge
			if !cmd.Flags().Changed("max-age") {
				age = cfg.ScratchMaxAge()
			}

			result, err := scratch.Sweep(cmd.Context(), cfg.Paths.ScratchDir, age, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Busy {
				fmt.Fprintln(out, "Another sweep is in progress; nothing removed")
				return nil
			}
			fmt.Fprintf(out, "Removed %d files older than %s\n", len(result.Removed), age)
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "  failed: %s (%v)\n", failure.Path, failure.Error)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Remove files last modified longer ago than this (defaults to scratch.max_age_seconds)")
	return cmd
}
