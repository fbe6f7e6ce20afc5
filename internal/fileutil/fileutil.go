package fileutil

import (
	"fmt"
	"io"
	"os"
)

// WriteFile streams r into dst, truncating any existing file. A partially
// written dst is removed when the copy fails.
func WriteFile(dst string, r io.Reader) (int64, error) {
	return WriteFileMode(dst, r, 0o644)
}

// WriteFileMode is WriteFile with an explicit permission for a newly created dst.
func WriteFileMode(dst string, r io.Reader, mode os.FileMode) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return written, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return written, err
	}
	return written, nil
}

// CopyFile streams src to dst using default permissions (0o644).
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", src)
	}
	return WriteFile(dst, in)
}

// NonEmptyFile reports whether path exists as a regular file with content.
func NonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
