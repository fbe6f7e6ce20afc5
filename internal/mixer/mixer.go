package mixer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/whomstve123/mixing-api/internal/fileutil"
	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/services"
)

const (
	// Bitrate is the fixed MP3 encoding rate.
	Bitrate = "192k"
	// DefaultVolume applies to inputs without a matching volume entry.
	DefaultVolume = 1.0

	stageMixing = "mixing"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Mixer sums gain-adjusted audio inputs into one MP3 using ffmpeg.
type Mixer struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// New constructs a mixer that invokes binary (ffmpeg when empty).
func New(binary string, logger *slog.Logger) *Mixer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Mixer{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "mixer"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Mixer) WithCommandRunner(r commandRunner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Binary returns the ffmpeg executable the mixer invokes.
func (m *Mixer) Binary() string {
	return m.binary
}

// Mix runs one ffmpeg invocation over inputs, in order, applying volumes[i]
// to input i (1.0 when absent) and writing a 192 kbit/s MP3 to output. The
// mixed stream lasts as long as the longest input. It blocks until ffmpeg
// exits. Failures wrap services.ErrEncode.
func (m *Mixer) Mix(ctx context.Context, inputs []string, output string, volumes []float64) error {
	if m == nil {
		return services.Wrap(services.ErrEncode, stageMixing, "mix", "mixer not initialized", nil)
	}
	if len(inputs) == 0 {
		return services.Wrap(services.ErrEncode, stageMixing, "mix", "at least one input is required", nil)
	}
	if strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrEncode, stageMixing, "mix", "output path is required", nil)
	}

	args := BuildArgs(inputs, output, volumes)
	logger := logging.WithContext(ctx, m.logger)
	logger.Debug("executing ffmpeg",
		logging.Int("input_count", len(inputs)),
		logging.String("output", output),
		logging.String("filter", filterGraph(len(inputs), volumes)),
	)

	start := time.Now()
	if err := m.run(ctx, m.binary, args...); err != nil {
		return services.Wrap(services.ErrEncode, stageMixing, "ffmpeg", "mix failed", err)
	}
	if !fileutil.NonEmptyFile(output) {
		return services.Wrap(services.ErrEncode, stageMixing, "ffmpeg", "ffmpeg exited cleanly but produced no output file", nil)
	}

	logger.Info("stems mixed",
		logging.String(logging.FieldEventType, "mix_complete"),
		logging.Int("input_count", len(inputs)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// BuildArgs returns the ffmpeg argument vector for a mix. Input order defines
// the source index inside the filter graph.
func BuildArgs(inputs []string, output string, volumes []float64) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, input := range inputs {
		args = append(args, "-i", input)
	}
	args = append(args,
		"-filter_complex", filterGraph(len(inputs), volumes),
		"-map", "[out]",
		"-c:a", "libmp3lame",
		"-b:a", Bitrate,
		output,
	)
	return args
}

// filterGraph builds "[0:a]volume=V0[a0];...;[a0][a1]amix=inputs=N:duration=longest:normalize=0[out]".
// normalize=0 disables amix's 1/N input scaling.
func filterGraph(count int, volumes []float64) string {
	var b strings.Builder
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "[%d:a]volume=%s[a%d];", i, formatVolume(VolumeAt(volumes, i)), i)
	}
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "[a%d]", i)
	}
	fmt.Fprintf(&b, "amix=inputs=%d:duration=longest:normalize=0[out]", count)
	return b.String()
}

// VolumeAt returns volumes[i], or DefaultVolume when i is out of range.
func VolumeAt(volumes []float64, i int) float64 {
	if i < 0 || i >= len(volumes) {
		return DefaultVolume
	}
	return volumes[i]
}

func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
