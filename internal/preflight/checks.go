package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/whomstve123/mixing-api/internal/config"
	"github.com/whomstve123/mixing-api/internal/deps"
	"github.com/whomstve123/mixing-api/internal/storage"
)

// Pinger is the storage call the reachability check relies on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckStorage verifies the S3-compatible endpoint accepts the configured
// credentials. It uses a 5-second timeout and a single attempt.
func CheckStorage(ctx context.Context, cfg config.Storage) Result {
	const name = "Object storage"
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return Result{Name: name, Detail: "missing endpoint"}
	}
	client, err := storage.New(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return checkPinger(ctx, name, cfg.Endpoint, client)
}

func checkPinger(ctx context.Context, name, endpoint string, pinger Pinger) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pinger.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeStorageError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", endpoint)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the binaries the mixer and CLI shell out to.
// The server's root endpoint and the CLI status command share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg.FFmpeg.Binary, cfg.FFmpeg.FFprobeBinary))
}

// CheckEncoder reports whether the configured ffmpeg can produce MP3.
func CheckEncoder(ctx context.Context, cfg *config.Config) Result {
	status := deps.CheckMP3Encoder(ctx, cfg.FFmpeg.Binary)
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: deps.MP3Encoder + " available"}
}

func summarizeStorageError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (storage unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (storage unreachable)"
	}
	return err.Error()
}
