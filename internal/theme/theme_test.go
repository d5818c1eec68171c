package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultsToConfigured(t *testing.T) {
	configured := []string{"dark", "light"}
	got, err := Parse(nil, configured)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "dark" || got[1] != "light" {
		t.Fatalf("got %v", got)
	}

	// Returned slice must be a copy.
	got[0] = "mutated"
	if configured[0] != "dark" {
		t.Fatal("Parse aliased the configured slice")
	}
}

func TestParseNormalizesAndDedupes(t *testing.T) {
	got, err := Parse([]string{" Dark ", "dark"}, []string{"dark", "light"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "dark" {
		t.Fatalf("got %v", got)
	}
}

func TestParseRejectsUnknownTheme(t *testing.T) {
	_, err := Parse([]string{"sepia"}, []string{"dark", "light"})
	if err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestResolveRootProbesInOrder(t *testing.T) {
	buildDir := t.TempDir()

	// Second candidate only.
	nested := filepath.Join(buildDir, "manim", "dark", "media", "videos")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := ResolveRoot(buildDir, "dark")
	if err != nil {
		t.Fatal(err)
	}
	// manim/dark exists as a parent directory, so the first candidate wins.
	if got != filepath.Join(buildDir, "manim", "dark") {
		t.Fatalf("got %s", got)
	}

	// media/videos layout for a theme with no manim directory.
	alt := filepath.Join(buildDir, "media", "videos", "light")
	if err := os.MkdirAll(alt, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err = ResolveRoot(buildDir, "light")
	if err != nil {
		t.Fatal(err)
	}
	if got != alt {
		t.Fatalf("got %s, want %s", got, alt)
	}
}

func TestResolveRootNotFound(t *testing.T) {
	_, err := ResolveRoot(t.TempDir(), "dark")
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("got %v, want ErrRootNotFound", err)
	}
}

func TestPosterName(t *testing.T) {
	if got := PosterName("intro", "dark"); got != "intro-dark.jpg" {
		t.Fatalf("got %s", got)
	}
}
