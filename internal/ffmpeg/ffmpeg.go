// Package ffmpeg builds and runs the transcoder command lines the pipeline
// uses. The transcoder itself is a black box: presskit only depends on the
// argv contract and the exit code.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// WebMArgs constructs the argument slice for the VP9/WebM transcode of a
// single render. The profile is constant quality, no audio track.
func WebMArgs(binary, input, output string, crf int, pixFmt string) []string {
	return []string{
		binary,
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		"-i", input,
		"-c:v", "libvpx-vp9",
		"-crf", strconv.Itoa(crf),
		"-b:v", "0",
		"-pix_fmt", pixFmt,
		"-an",
		output,
	}
}

// PosterArgs constructs the argument slice extracting exactly one frame as a
// JPEG. seekSeconds positions the frame; zero reads the first frame.
func PosterArgs(binary, input, output string, quality int, seekSeconds float64) []string {
	args := []string{
		binary,
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
	}
	if seekSeconds > 0 {
		args = append(args, "-ss", strconv.FormatFloat(seekSeconds, 'f', -1, 64))
	}
	args = append(args,
		"-i", input,
		"-frames:v", "1",
		"-q:v", strconv.Itoa(quality),
		output,
	)
	return args
}

// Run executes the argv, blocking until exit. Stderr is captured and folded
// into the returned error so failures carry the transcoder's diagnostic.
func Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("ffmpeg run: empty argv")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, lastLines(detail, 4))
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// lastLines keeps error output readable when the transcoder dumps a screenful.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
