package scratch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/whomstve123/mixing-api/internal/logging"
)

// LockFileName is created inside the scratch root to serialise sweeps across
// processes sharing the directory.
const LockFileName = ".sweep.lock"

// SweepResult contains the outcome of a stale file sweep.
type SweepResult struct {
	Removed []string
	Errors  []CleanupError
	// Busy is set when another process held the sweep lock and nothing was examined.
	Busy bool
}

// Sweep removes scratch files older than maxAge. It cannot see requests
// running in other processes, so a request whose files outlive maxAge can
// lose them; use Dir.Sweep inside the serving process.
func Sweep(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) (SweepResult, error) {
	return sweep(ctx, root, maxAge, nil, logger)
}

// Sweep removes files older than maxAge, skipping every file that belongs to
// a request still holding an Acquire.
func (d *Dir) Sweep(ctx context.Context, maxAge time.Duration, logger *slog.Logger) (SweepResult, error) {
	return sweep(ctx, d.root, maxAge, d.InUse, logger)
}

func sweep(ctx context.Context, root string, maxAge time.Duration, inUse func(string) bool, logger *slog.Logger) (SweepResult, error) {
	var result SweepResult
	if logger == nil {
		logger = logging.NewNop()
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return result, nil
	}
	if maxAge <= 0 {
		return result, fmt.Errorf("sweep max age must be positive, got %s", maxAge)
	}
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, err
	}

	lock := flock.New(filepath.Join(root, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		result.Busy = true
		logger.Debug("scratch sweep skipped; lock held elsewhere")
		return result, nil
	}
	defer func() {
		_ = lock.Unlock()
	}()

	files, err := List(root)
	if err != nil {
		return result, err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !file.ModTime.Before(cutoff) {
			continue
		}
		if inUse != nil && inUse(file.Name) {
			logger.Debug("stale scratch file kept; request still running", logging.String("path", file.Path))
			continue
		}
		if err := os.Remove(file.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			result.Errors = append(result.Errors, CleanupError{Path: file.Path, Error: err})
			logging.WarnEvent(logger, "failed to remove stale scratch file",
				logging.EventScratchSweepFailed.WithHint("check scratch_dir permissions"),
				logging.String("path", file.Path),
				logging.Error(err),
			)
			continue
		}
		result.Removed = append(result.Removed, file.Path)
		logger.Info("removed stale scratch file",
			logging.String("path", file.Path),
			logging.Duration("age", time.Since(file.ModTime)),
			logging.String(logging.FieldEventType, "scratch_sweep"),
		)
	}
	return result, nil
}

// Sweeper runs Sweep on a fixed interval until its context ends.
type Sweeper struct {
	dir      *Dir
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewSweeper constructs a sweeper. A non-positive interval disables it.
func NewSweeper(dir *Dir, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		dir:      dir,
		interval: interval,
		maxAge:   maxAge,
		logger:   logging.NewComponentLogger(logger, "scratch-sweeper"),
	}
}

// Run sweeps once immediately and then on every tick. It returns nil when
// ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Debug("scratch sweeper disabled")
		return nil
	}
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	result, err := s.dir.Sweep(ctx, s.maxAge, s.logger)
	if err != nil && ctx.Err() == nil {
		logging.WarnEvent(s.logger, "scratch sweep failed", logging.EventScratchSweepFailed, logging.Error(err))
		return
	}
	if len(result.Removed) > 0 {
		s.logger.Info("scratch sweep complete", logging.Int("removed", len(result.Removed)))
	}
}
