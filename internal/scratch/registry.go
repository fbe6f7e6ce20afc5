package scratch

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/whomstve123/mixing-api/internal/logging"
)

// Registry is the ordered list of scratch files one request has acquired.
// Paths are appended as each stage succeeds and drained by Cleanup on every
// exit path.
type Registry struct {
	mu     sync.Mutex
	paths  []string
	logger *slog.Logger
}

// CleanupResult reports what a Cleanup pass removed.
type CleanupResult struct {
	Removed []string
	Skipped []string
	Errors  []CleanupError
}

// CleanupError pairs a scratch path with its deletion error.
type CleanupError struct {
	Path  string
	Error error
}

// NewRegistry returns an empty registry that logs cleanup failures to logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{logger: logger}
}

// Track registers path for removal. Tracking a path before it exists is
// expected: the output file is registered ahead of the encoder run.
func (r *Registry) Track(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths returns a copy of the registered paths in acquisition order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Cleanup deletes every registered path and empties the registry. Files that
// are already gone are skipped silently; other failures are logged and never
// stop the remaining deletions. Calling Cleanup again is a no-op.
func (r *Registry) Cleanup() CleanupResult {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.mu.Unlock()

	var result CleanupResult
	for _, path := range paths {
		err := os.Remove(path)
		switch {
		case err == nil:
			result.Removed = append(result.Removed, path)
		case errors.Is(err, fs.ErrNotExist):
			result.Skipped = append(result.Skipped, path)
		default:
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnEvent(r.logger, "failed to remove scratch file", logging.EventScratchCleanupFailed,
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
	if len(result.Removed) > 0 {
		r.logger.Debug("scratch files removed", logging.Int("count", len(result.Removed)))
	}
	return result
}
