// Package fetch downloads stems into request-scoped scratch files.
//
// HTTP(S) URLs are retrieved with a plain GET, s3:// URLs go through an
// ObjectStore when storage is enabled, and local paths are accepted only when
// explicitly allowed (the CLI). Scratch file names follow
// {requestId}_stem_{index}.{extension}.
package fetch
