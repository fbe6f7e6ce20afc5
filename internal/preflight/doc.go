// Package preflight runs the readiness checks shared by the server's root
// endpoint and the CLI status command: scratch directory access, ffmpeg and
// ffprobe availability, MP3 encoder support, and object storage reachability
// when storage is enabled.
package preflight
