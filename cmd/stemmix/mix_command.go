package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/whomstve123/mixing-api/internal/config"
	"github.com/whomstve123/mixing-api/internal/media/ffprobe"
	"github.com/whomstve123/mixing-api/internal/mixing"
)

func newMixCommand(ctx *commandContext) *cobra.Command {
	var volumes []float64
	var outPath string
	var allowLocal bool

	cmd := &cobra.Command{
		Use:   "mix [flags] STEM...",
		Short: "Mix stems from URLs or local files into one MP3",
		Long: "Mix runs the same pipeline as the HTTP service and writes the result to --out.\n" +
			"STEM may be an http(s) URL, an s3:// URL when storage is enabled, or a local\n" +
			"path when --local or fetch.allow_local is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.cliLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			target := strings.TrimSpace(outPath)
			if target == "" {
				return errors.New("--out is required")
			}
			if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			req := mixing.Request{Stems: make([]mixing.ResolvedStem, len(args))}
			for i, arg := range args {
				stem := strings.TrimSpace(arg)
				if stem == "" {
					return fmt.Errorf("stem %d is empty", i)
				}
				req.Stems[i] = mixing.ResolvedStem{Index: i, URL: stem}
			}
			for i := range volumes {
				v := volumes[i]
				req.Volumes = append(req.Volumes, &v)
			}

			pipeline, _, err := buildPipeline(cmd.Context(), cfg, logger, pipelineOptions{
				allowLocal: allowLocal || cfg.Fetch.AllowLocal,
			})
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := pipeline.Run(cmd.Context(), uuid.NewString(), req)
			if err != nil {
				return err
			}
			defer pipeline.Finish(cmd.Context(), result)

			written, err := writeResult(result, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%s) in %s\n", target, humanize.Bytes(uint64(written)), time.Since(start).Round(time.Millisecond))
			if report, err := ffprobe.Probe(cmd.Context(), cfg.FFmpeg.FFprobeBinary, target); err == nil {
				fmt.Fprintf(out, "Output: %s\n", report)
			} else {
				logger.Debug("ffprobe unavailable for output report", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&volumes, "volume", nil, "Per-stem volume multiplier in stem order (repeatable; missing entries default to 1.0)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination MP3 file")
	cmd.Flags().BoolVar(&allowLocal, "local", false, "Allow local file paths and file:// URLs as stems")
	return cmd
}

func writeResult(result *mixing.Result, target string) (int64, error) {
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}
	file, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	written, err := result.Stream(file)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return written, err
	}
	return written, nil
}
