package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"presskit/internal/config"
)

// WriteFile creates the target path with the given content, creating parent
// directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteRender drops a fake raw render at the given path relative to the
// theme's render directory and returns its absolute location.
func WriteRender(t testing.TB, cfg *config.Config, theme, rel string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.BuildDir, "manim", theme, rel)
	WriteFile(t, path, "render")
	return path
}
