package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/whomstve123/mixing-api/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckPinger(t *testing.T) {
	ok := checkPinger(context.Background(), "Object storage", "http://minio:9000", pingFunc(func(context.Context) error { return nil }))
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}

	failed := checkPinger(context.Background(), "Object storage", "http://minio:9000", pingFunc(func(context.Context) error {
		return errors.New("list buckets: AccessDenied")
	}))
	if failed.Passed || failed.Detail != "list buckets: AccessDenied" {
		t.Fatalf("unexpected result %#v", failed)
	}

	timedOut := checkPinger(context.Background(), "Object storage", "http://minio:9000", pingFunc(func(context.Context) error {
		return context.DeadlineExceeded
	}))
	if timedOut.Passed || timedOut.Detail != "health check timed out (storage unresponsive)" {
		t.Fatalf("unexpected result %#v", timedOut)
	}
}

func TestCheckStorage_MissingEndpoint(t *testing.T) {
	result := CheckStorage(context.Background(), config.Storage{Enabled: true})
	if result.Passed || result.Detail != "missing endpoint" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil, got %v", results)
	}
}

func TestRunAll_ReportsMissingFFmpeg(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ScratchDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.FFmpeg.Binary = "clearly-not-present-ffmpeg"
	cfg.FFmpeg.FFprobeBinary = "clearly-not-present-ffprobe"
	cfg.Storage.Enabled = false

	results := RunAll(context.Background(), &cfg)
	names := map[string]Result{}
	for _, r := range results {
		names[r.Name] = r
	}
	if !names["Scratch directory"].Passed {
		t.Fatalf("expected scratch dir to pass, got %#v", names["Scratch directory"])
	}
	if names["FFmpeg"].Passed {
		t.Fatal("expected missing ffmpeg to fail")
	}
	if !names["FFprobe"].Passed {
		t.Fatal("optional ffprobe should not fail the run")
	}
	if _, ok := names["MP3 encoder"]; ok {
		t.Fatal("encoder check should be skipped when ffmpeg is missing")
	}
	if _, ok := names["Object storage"]; ok {
		t.Fatal("storage check should be skipped when disabled")
	}
	if AllPassed(results) {
		t.Fatal("expected AllPassed to be false")
	}
}
