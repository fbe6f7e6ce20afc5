package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/whomstve123/mixing-api/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PORT", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantScratch := filepath.Join(tempHome, ".local", "share", "stemmix", "scratch")
	if cfg.Paths.ScratchDir != wantScratch {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Paths.ScratchDir, wantScratch)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes != 50<<20 {
		t.Fatalf("unexpected body limit: %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.ListenAddress() != "0.0.0.0:3000" {
		t.Fatalf("unexpected listen address: %q", cfg.ListenAddress())
	}
	if cfg.FFmpeg.Binary != "ffmpeg" || cfg.FFmpeg.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected ffmpeg binaries: %+v", cfg.FFmpeg)
	}
	if cfg.Fetch.AllowLocal {
		t.Fatal("expected local sources disabled by default")
	}
	if cfg.Storage.Enabled {
		t.Fatal("expected storage disabled by default")
	}
	if cfg.Storage.Region != "auto" {
		t.Fatalf("expected storage region auto, got %q", cfg.Storage.Region)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.ScratchDir)
	if err != nil {
		t.Fatalf("expected scratch directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be directory", cfg.Paths.ScratchDir)
	}
}

func TestPortEnvOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stemmix.toml")

	type payload struct {
		Server struct {
			Port int `toml:"port"`
		} `toml:"server"`
	}
	custom := payload{}
	custom.Server.Port = 8080
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("PORT", "9090")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected PORT to override file, got %d", cfg.Server.Port)
	}

	t.Setenv("PORT", "not-a-port")
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stemmix.toml")
	t.Setenv("PORT", "")

	type payload struct {
		Paths struct {
			ScratchDir string `toml:"scratch_dir"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
		Scratch struct {
			MaxAgeSeconds int `toml:"max_age_seconds"`
		} `toml:"scratch"`
	}
	custom := payload{}
	custom.Paths.ScratchDir = filepath.Join(tempDir, "scratch")
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "
	custom.Scratch.MaxAgeSeconds = 120
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.ScratchDir != filepath.Join(tempDir, "scratch") {
		t.Fatalf("unexpected scratch dir %q", cfg.Paths.ScratchDir)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging settings, got %+v", cfg.Logging)
	}
	if cfg.ScratchMaxAge().Seconds() != 120 {
		t.Fatalf("unexpected scratch max age: %v", cfg.ScratchMaxAge())
	}
}

func TestStorageCredentialsFromEnv(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stemmix.toml")
	t.Setenv("PORT", "")
	if err := os.WriteFile(configPath, []byte("[storage]\nenabled = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("S3_ENDPOINT", "https://account.r2.cloudflarestorage.com")
	t.Setenv("S3_ACCESS_KEY_ID", "env-access")
	t.Setenv("S3_SECRET_ACCESS_KEY", "env-secret")
	t.Setenv("S3_REGION", "")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Endpoint != "https://account.r2.cloudflarestorage.com" {
		t.Errorf("expected endpoint from env, got %q", cfg.Storage.Endpoint)
	}
	if cfg.Storage.AccessKeyID != "env-access" || cfg.Storage.SecretAccessKey != "env-secret" {
		t.Errorf("expected credentials from env, got %q/%q", cfg.Storage.AccessKeyID, cfg.Storage.SecretAccessKey)
	}
	if cfg.Storage.Region != "auto" {
		t.Errorf("expected default region, got %q", cfg.Storage.Region)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "max_body_bytes") {
		t.Fatalf("sample config missing body limit: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.ScratchDir, "stemmix") {
		t.Fatalf("expected scratch dir to contain stemmix, got %q", cfg.Paths.ScratchDir)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("unexpected sample port %d", cfg.Server.Port)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero port")
	}

	cfg = config.Default()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out of range port")
	}

	cfg = config.Default()
	cfg.Storage.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when storage enabled without endpoint")
	}

	cfg = config.Default()
	cfg.Storage.Enabled = true
	cfg.Storage.Endpoint = "https://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when storage enabled without credentials")
	}

	cfg = config.Default()
	cfg.Paths.ScratchDir = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when scratch dir is blank")
	}
}
