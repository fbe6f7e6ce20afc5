package preflight

import (
	"context"
	"fmt"

	"github.com/whomstve123/mixing-api/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	ffmpegFound := false
	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
			if status.Optional {
				detail = fmt.Sprintf("%s (optional)", detail)
			}
		}
		if status.Name == "FFmpeg" {
			ffmpegFound = status.Available
		}
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available || status.Optional,
			Detail: detail,
		})
	}
	if ffmpegFound {
		results = append(results, CheckEncoder(ctx, cfg))
	}

	if cfg.Storage.Enabled {
		results = append(results, CheckStorage(ctx, cfg.Storage))
	}

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
