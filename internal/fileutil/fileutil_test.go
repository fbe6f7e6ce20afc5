package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := CopyFile(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(content)) {
		t.Fatalf("copied %d bytes, want %d", n, len(content))
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := CopyFile(dir, filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected error copying a directory")
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "stem.wav")
	if err := os.WriteFile(dst, []byte("previous content that is longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteFile(dst, strings.NewReader("new")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected truncated overwrite, got %q", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteFileRemovesPartialOnError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "partial.wav")
	r := io.MultiReader(strings.NewReader("head"), failingReader{})

	if _, err := WriteFile(dst, r); err == nil {
		t.Fatal("expected copy error")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("expected partial file removed, stat err=%v", err)
	}
}

func TestNonEmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.mp3")
	full := filepath.Join(dir, "full.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}

	if NonEmptyFile(empty) {
		t.Fatal("empty file reported as non-empty")
	}
	if !NonEmptyFile(full) {
		t.Fatal("expected full file to be non-empty")
	}
	if NonEmptyFile(filepath.Join(dir, "missing.mp3")) || NonEmptyFile(dir) {
		t.Fatal("missing file or directory reported as non-empty")
	}
}
