package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	scratchDir string
}

// fakeFFmpeg writes a marker MP3 to the last argument, like a successful encode.
const fakeFFmpeg = `#!/bin/sh
for last; do :; done
case "$*" in
  *-encoders*) echo " A..... libmp3lame  libmp3lame MP3"; exit 0 ;;
esac
printf 'ID3-cli-mix' > "$last"
`

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	ffmpeg := filepath.Join(base, "ffmpeg")
	if err := os.WriteFile(ffmpeg, []byte(fakeFFmpeg), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		scratchDir: filepath.Join(base, "scratch"),
	}
	contents := fmt.Sprintf(`[paths]
scratch_dir = %q

[ffmpeg]
binary = %q
ffprobe_binary = %q

[logging]
level = "error"
`, env.scratchDir, ffmpeg, filepath.Join(base, "missing-ffprobe"))
	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.scratchDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestMixCommandWritesOutputAndCleansScratch(t *testing.T) {
	env := setupCLITestEnv(t)
	stemA := filepath.Join(env.baseDir, "drums.wav")
	stemB := filepath.Join(env.baseDir, "bass.flac")
	for _, p := range []string{stemA, stemB} {
		if err := os.WriteFile(p, []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("write stem: %v", err)
		}
	}
	target := filepath.Join(env.baseDir, "out", "mix.mp3")

	out, _, err := runCLI(t, []string{"mix", "--local", "--volume", "1", "--volume", "0.5", "--out", target, stemA, stemB}, env.configPath)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	requireContains(t, out, "Wrote "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "ID3-cli-mix" {
		t.Fatalf("output = %q", data)
	}
	entries, err := os.ReadDir(env.scratchDir)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch empty, found %d entries", len(entries))
	}
}

func TestMixCommandRejectsLocalWithoutFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	stem := filepath.Join(env.baseDir, "drums.wav")
	if err := os.WriteFile(stem, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write stem: %v", err)
	}
	_, _, err := runCLI(t, []string{"mix", "--out", filepath.Join(env.baseDir, "mix.mp3"), stem}, env.configPath)
	if err == nil {
		t.Fatal("expected local stem to be refused")
	}
	requireContains(t, err.Error(), "local file sources are not allowed")
}

func TestMixCommandRequiresOut(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"mix", "https://example.com/a.wav"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--out") {
		t.Fatalf("expected --out error, got %v", err)
	}
}

func TestStatusPassesWithWorkingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "Scratch directory")
	requireContains(t, out, "MP3 encoder")
	requireContains(t, out, "(optional)")
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failure in\n%s", out)
	}
}

func TestStatusReportsMissingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	contents := fmt.Sprintf("[paths]\nscratch_dir = %q\n\n[ffmpeg]\nbinary = \"clearly-not-present-ffmpeg\"\n", env.scratchDir)
	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err == nil {
		t.Fatal("expected status to fail")
	}
	requireContains(t, out, "FAIL")
	requireContains(t, out, "clearly-not-present-ffmpeg")
}

func TestScratchListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.scratchDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(env.scratchDir, "old_stem_0.wav")
	fresh := filepath.Join(env.scratchDir, "new_stem_0.wav")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	old := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, _, err := runCLI(t, []string{"scratch", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("scratch list: %v", err)
	}
	requireContains(t, out, "old_stem_0.wav")
	requireContains(t, out, "2 files")

	out, _, err = runCLI(t, []string{"scratch", "clean", "--max-age", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("scratch clean: %v", err)
	}
	requireContains(t, out, "Removed 1 files")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected stale file removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh file kept: %v", err)
	}

	out, _, err = runCLI(t, []string{"scratch", "clean", "--max-age", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("second clean: %v", err)
	}
	requireContains(t, out, "Removed 0 files")
}
