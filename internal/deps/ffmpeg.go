package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// MP3Encoder is the ffmpeg encoder the mixer requests.
const MP3Encoder = "libmp3lame"

type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

var runOutput outputRunner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Requirements lists the binaries the mix pipeline shells out to.
func Requirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Required for mixing and MP3 encoding",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Used by the CLI to report mixed duration",
			Optional:    true,
		},
	}
}

// CheckMP3Encoder confirms the ffmpeg binary was built with libmp3lame.
func CheckMP3Encoder(ctx context.Context, ffmpegBinary string) Status {
	status := Status{
		Name:        "MP3 encoder",
		Command:     strings.TrimSpace(ffmpegBinary),
		Description: "ffmpeg must provide " + MP3Encoder,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	output, err := runOutput(checkCtx, status.Command, "-hide_banner", "-encoders")
	if err != nil {
		status.Detail = fmt.Sprintf("list encoders: %v", err)
		return status
	}
	if !strings.Contains(string(output), MP3Encoder) {
		status.Detail = fmt.Sprintf("%s not listed by %s -encoders", MP3Encoder, status.Command)
		return status
	}
	status.Available = true
	return status
}
