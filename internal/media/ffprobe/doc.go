// Package ffprobe summarizes an encoded mix using ffprobe.
//
// Probe asks ffprobe for only the container duration and bitrate plus the
// audio stream codec, sample rate and channel count, and returns them as a
// Report. The mix command prints the report after writing its output and the
// mixer integration tests use it to confirm that a mix lasts as long as its
// longest input.
package ffprobe
