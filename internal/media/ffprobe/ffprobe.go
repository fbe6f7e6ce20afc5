package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// showEntries limits ffprobe to the fields a mix report needs.
const showEntries = "format=duration,bit_rate:stream=codec_type,codec_name,sample_rate,channels"

// Report summarizes an encoded mix.
type Report struct {
	Codec        string
	Duration     time.Duration
	BitRate      int64
	SampleRate   int
	Channels     int
	AudioStreams int
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Probe runs ffprobe against path and summarizes its first audio stream.
func Probe(ctx context.Context, binary string, path string) (Report, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Report{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_entries", showEntries, "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Report{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Report{}, fmt.Errorf("ffprobe: %w", err)
	}
	return ParseReport(output)
}

// ParseReport decodes ffprobe JSON output. Fields ffprobe leaves out or
// reports as "N/A" stay zero.
func ParseReport(data []byte) (Report, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Report{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	var report Report
	if seconds, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64); err == nil && seconds > 0 {
		report.Duration = time.Duration(seconds * float64(time.Second))
	}
	if rate, err := strconv.ParseInt(strings.TrimSpace(raw.Format.BitRate), 10, 64); err == nil && rate > 0 {
		report.BitRate = rate
	}
	for _, stream := range raw.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		report.AudioStreams++
		if report.AudioStreams > 1 {
			continue
		}
		report.Codec = stream.CodecName
		report.Channels = stream.Channels
		if rate, err := strconv.Atoi(strings.TrimSpace(stream.SampleRate)); err == nil {
			report.SampleRate = rate
		}
	}
	return report, nil
}

// String renders the report for the mix command, e.g.
// "mp3, 44.1 kHz, 2 ch, 192 kb/s, 5.02s".
func (r Report) String() string {
	parts := []string{}
	if r.Codec != "" {
		parts = append(parts, r.Codec)
	}
	if r.SampleRate > 0 {
		parts = append(parts, humanize.SIWithDigits(float64(r.SampleRate), 1, "Hz"))
	}
	if r.Channels > 0 {
		parts = append(parts, strconv.Itoa(r.Channels)+" ch")
	}
	if r.BitRate > 0 {
		parts = append(parts, strconv.FormatInt(r.BitRate/1000, 10)+" kb/s")
	}
	parts = append(parts, fmt.Sprintf("%.2fs", r.Duration.Seconds()))
	return strings.Join(parts, ", ")
}
