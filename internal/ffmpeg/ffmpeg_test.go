package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestWebMArgs(t *testing.T) {
	args := WebMArgs("ffmpeg", "in.mp4", "out.webm", 32, "yuv420p")

	if args[0] != "ffmpeg" {
		t.Fatalf("binary = %q, want ffmpeg", args[0])
	}
	if args[len(args)-1] != "out.webm" {
		t.Fatalf("output = %q, want out.webm", args[len(args)-1])
	}
	for _, pair := range [][2]string{
		{"-c:v", "libvpx-vp9"},
		{"-crf", "32"},
		{"-b:v", "0"},
		{"-pix_fmt", "yuv420p"},
		{"-i", "in.mp4"},
	} {
		i := slices.Index(args, pair[0])
		if i < 0 || args[i+1] != pair[1] {
			t.Errorf("expected %s %s in args %v", pair[0], pair[1], args)
		}
	}
	if !slices.Contains(args, "-an") {
		t.Errorf("expected -an in args %v", args)
	}
}

func TestPosterArgsSeekOptional(t *testing.T) {
	args := PosterArgs("ffmpeg", "in.webm", "out.jpg", 2, 0)
	if slices.Contains(args, "-ss") {
		t.Errorf("zero seek should omit -ss, got %v", args)
	}

	args = PosterArgs("ffmpeg", "in.webm", "out.jpg", 2, 1.5)
	i := slices.Index(args, "-ss")
	if i < 0 || args[i+1] != "1.5" {
		t.Errorf("expected -ss 1.5 in args %v", args)
	}
	// -ss must precede -i for input seeking.
	if i > slices.Index(args, "-i") {
		t.Errorf("-ss must come before -i: %v", args)
	}
}

func TestRunCapturesStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "failer")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'no such codec' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), []string{script})
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	if !strings.Contains(err.Error(), "no such codec") {
		t.Errorf("error should carry stderr, got %q", err)
	}
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ok")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), []string{script}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
