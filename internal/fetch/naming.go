package fetch

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultExtension is used when a URL carries no usable extension.
const DefaultExtension = "wav"

const maxExtensionLength = 8

// StemFilename names the scratch file for stem index of a request. The
// extension is advisory; ffmpeg sniffs the real container format.
func StemFilename(requestID string, index int, rawURL string) string {
	return fmt.Sprintf("%s_stem_%d.%s", requestID, index, InferExtension(rawURL))
}

// InferExtension returns the text after the last "." of the URL's final path
// segment, with query and fragment stripped. It falls back to wav when there
// is no dot or the remainder is empty.
//
// The result becomes part of a scratch file name, so it is also guarded:
// it is lowercased, and anything that is not a plain alphanumeric token of at
// most eight characters (for example "mp3-hq" or "we ird") falls back to wav.
// ffmpeg probes the real container, so the fallback never changes decoding.
func InferExtension(rawURL string) string {
	segment := lastSegment(rawURL)
	idx := strings.LastIndex(segment, ".")
	if idx < 0 {
		return DefaultExtension
	}
	ext := strings.ToLower(segment[idx+1:])
	if ext == "" || len(ext) > maxExtensionLength {
		return DefaultExtension
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return DefaultExtension
		}
	}
	return ext
}

func lastSegment(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if parsed, err := url.Parse(trimmed); err == nil {
		if parsed.Path != "" {
			return path.Base(parsed.Path)
		}
		if parsed.Host != "" {
			return ""
		}
	}
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return trimmed
}
