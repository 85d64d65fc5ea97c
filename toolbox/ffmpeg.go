package toolbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vidsieve-cli/vidsieve/key"
	"github.com/vidsieve-cli/vidsieve/log"
)

// FFmpeg implements Toolbox by invoking the ffmpeg and ffprobe binaries
// configured under the toolbox.* keys.
type FFmpeg struct{}

// NewFFmpeg returns the process-backed toolbox implementation.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

// Available reports whether the configured ffmpeg binary is on the PATH.
// ffprobe is only required for probing and is checked there.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(viper.GetString(key.ToolboxFFmpeg))
	return err == nil
}

// Probe runs ffprobe and counts the video and audio elementary streams of
// the file at path.
func (f *FFmpeg) Probe(ctx context.Context, path string) (StreamProfile, error) {
	ctx, cancel := withTimeout(ctx, key.ToolboxProbeTimeout)
	defer cancel()

	out, err := run(ctx, viper.GetString(key.ToolboxFFprobe),
		"-v", "error",
		"-show_entries", "stream=codec_type",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return StreamProfile{}, fmt.Errorf("probe %s: %w", path, err)
	}

	var profile StreamProfile
	for _, line := range strings.Split(out, "\n") {
		switch strings.TrimSpace(line) {
		case "video":
			profile.Video++
		case "audio":
			profile.Audio++
		}
	}
	return profile, nil
}

// RemuxManifest delegates manifest resolution and container assembly to
// ffmpeg with stream copy.
func (f *FFmpeg) RemuxManifest(ctx context.Context, manifestURL, outputPath string) error {
	ctx, cancel := withTimeout(ctx, key.ToolboxTimeout)
	defer cancel()

	_, err := run(ctx, viper.GetString(key.ToolboxFFmpeg),
		"-y",
		"-loglevel", "error",
		"-i", manifestURL,
		"-c", "copy",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("remux %s: %w", manifestURL, err)
	}
	return nil
}

// Combine concatenates segment files or muxes a video/audio pair into one
// stream-copied output.
func (f *FFmpeg) Combine(ctx context.Context, inputs []string, outputPath string, mode CombineMode) error {
	ctx, cancel := withTimeout(ctx, key.ToolboxTimeout)
	defer cancel()

	var args []string
	switch mode {
	case ConcatSegments:
		if len(inputs) < 2 {
			return fmt.Errorf("concat needs at least 2 inputs, got %d", len(inputs))
		}
		args = []string{
			"-y",
			"-loglevel", "error",
			"-i", "concat:" + strings.Join(inputs, "|"),
			"-c", "copy",
			outputPath,
		}
	case MergeTracks:
		if len(inputs) != 2 {
			return fmt.Errorf("track merge needs exactly 2 inputs, got %d", len(inputs))
		}
		args = []string{
			"-y",
			"-loglevel", "error",
			"-i", inputs[0],
			"-i", inputs[1],
			"-c:v", "copy",
			"-c:a", "copy",
			outputPath,
		}
	default:
		return fmt.Errorf("unknown combine mode %d", mode)
	}

	if _, err := run(ctx, viper.GetString(key.ToolboxFFmpeg), args...); err != nil {
		return fmt.Errorf("combine into %s: %w", outputPath, err)
	}
	return nil
}

// run executes a toolbox binary to completion, returning its stdout.
// Context cancellation kills the child process; stderr is preserved in the
// returned error for diagnostics.
func run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	log.Debugf("toolbox: %s %s", name, strings.Join(args, " "))

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s timed out", name)
	}

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return "", fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return "", fmt.Errorf("%s: %w", name, err)
}

func withTimeout(ctx context.Context, timeoutKey string) (context.Context, context.CancelFunc) {
	seconds := viper.GetInt(timeoutKey)
	if seconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}
