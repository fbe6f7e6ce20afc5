package mixing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/whomstve123/mixing-api/internal/fetch"
	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/scratch"
	"github.com/whomstve123/mixing-api/internal/services"
)

// StemFetcher downloads one stem into dest.
type StemFetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// StemMixer combines inputs into one encoded output.
type StemMixer interface {
	Mix(ctx context.Context, inputs []string, output string, volumes []float64) error
}

// Pipeline drives a validated request through fetching and mixing. One
// Pipeline serves every request; per-request state lives in the Job and its
// scratch registry.
type Pipeline struct {
	dir     *scratch.Dir
	fetcher StemFetcher
	mixer   StemMixer
	logger  *slog.Logger
}

// NewPipeline wires a pipeline rooted at dir.
func NewPipeline(dir *scratch.Dir, fetcher StemFetcher, mixer StemMixer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		dir:     dir,
		fetcher: fetcher,
		mixer:   mixer,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run fetches every stem in index order, then mixes them in one encoder run.
// On success the returned Result owns every scratch file and the caller must
// Close it after streaming. On failure all scratch files acquired so far are
// removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, requestID string, req Request) (result *Result, err error) {
	ctx = services.WithRequestID(ctx, requestID)
	registry := scratch.NewRegistry(logging.WithContext(ctx, p.logger))
	job := Job{RequestID: requestID, Volumes: req.ResolvedVolumes()}
	start := time.Now()
	p.dir.Acquire(requestID)

	defer func() {
		if err == nil {
			return
		}
		defer p.dir.Release(requestID)
		failCtx := services.WithStage(ctx, string(StageFailing))
		logging.WarnEvent(logging.WithContext(failCtx, p.logger), "mix failed",
			logging.EventMixFailed.WithHint(errorHint(err)),
			logging.Error(err),
		)
		p.cleanup(ctx, registry)
	}()

	if len(req.Stems) == 0 {
		return nil, &ValidationError{Message: "stems must be a non-empty array", Index: -1}
	}

	fetchCtx := p.enter(ctx, StageFetching, logging.Int("stem_count", len(req.Stems)))
	for _, stem := range req.Stems {
		dest := p.dir.Path(fetch.StemFilename(requestID, stem.Index, stem.URL))
		registry.Track(dest)
		stemCtx := services.WithStemIndex(fetchCtx, stem.Index)
		if err := p.fetcher.Fetch(stemCtx, stem.URL, dest); err != nil {
			return nil, err
		}
		job.Inputs = append(job.Inputs, dest)
	}

	mixCtx := p.enter(ctx, StageMixing)
	job.Output = p.dir.Path(OutputFilename(requestID))
	registry.Track(job.Output)
	if err := p.mixer.Mix(mixCtx, job.Inputs, job.Output, job.Volumes); err != nil {
		return nil, err
	}

	file, err := os.Open(job.Output)
	if err != nil {
		return nil, services.Wrap(services.ErrEncode, string(StageMixing), "open output", job.Output, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, services.Wrap(services.ErrEncode, string(StageMixing), "stat output", job.Output, err)
	}

	p.enter(ctx, StageResponding,
		logging.Size("size", info.Size()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return &Result{
		Job:      job,
		Size:     info.Size(),
		file:     file,
		registry: registry,
		release:  func() { p.dir.Release(requestID) },
	}, nil
}

// Finish closes result and logs the cleanup outcome under the cleanup stage.
func (p *Pipeline) Finish(ctx context.Context, result *Result) {
	if result == nil {
		return
	}
	ctx = services.WithRequestID(ctx, result.Job.RequestID)
	if err := result.Close(); err != nil {
		logging.WithContext(ctx, p.logger).Debug("close mix output", logging.Error(err))
	}
	p.logCleanup(ctx, result.Cleanup())
}

func (p *Pipeline) enter(ctx context.Context, stage Stage, attrs ...logging.Attr) context.Context {
	ctx = services.WithStage(ctx, string(stage))
	logging.WithContext(ctx, p.logger).Debug("stage entered", logging.Args(attrs...)...)
	return ctx
}

func (p *Pipeline) cleanup(ctx context.Context, registry *scratch.Registry) {
	p.logCleanup(ctx, registry.Cleanup())
}

func (p *Pipeline) logCleanup(ctx context.Context, cleaned scratch.CleanupResult) {
	ctx = services.WithStage(ctx, string(StageCleanup))
	logging.WithContext(ctx, p.logger).Debug("scratch files released",
		logging.Int("removed", len(cleaned.Removed)),
		logging.Int("failed", len(cleaned.Errors)),
	)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return "fix the request body"
	case errors.Is(err, services.ErrDownload):
		return "check that every stem URL is reachable and returns 2xx"
	case errors.Is(err, services.ErrEncode):
		return "check ffmpeg output and that stems are decodable audio"
	default:
		return "check logs for details"
	}
}
