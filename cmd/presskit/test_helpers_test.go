package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"presskit/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Themes = []string{"dark"}
	cfgVal.Paths.BuildDir = filepath.Join(base, "build")
	cfgVal.Paths.SiteDir = filepath.Join(base, "site")
	cfgVal.Paths.FiguresDir = filepath.Join(base, "figures")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Render.Scenes = []string{"intro"}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfgVal)

	return &cliTestEnv{cfg: &cfgVal, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// stubTools installs fake renderer and transcoder binaries on PATH. The
// renderer drops one render under its --media_dir; the transcoder writes a
// byte to its final argument.
func stubTools(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	renderer := `#!/bin/sh
prev=""
media=""
for a; do
  if [ "$prev" = "--media_dir" ]; then media=$a; fi
  prev=$a
done
mkdir -p "$media/sde_animation"
echo "render $THEME" > "$media/sde_animation/intro.mp4"
`
	if err := os.WriteFile(filepath.Join(dir, "manim"), []byte(renderer), 0o755); err != nil {
		t.Fatal(err)
	}

	transcoder := `#!/bin/sh
for a; do out=$a; done
echo media > "$out"
`
	if err := os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(transcoder), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PATH", dir+string(os.PathListSeparator)+"/bin"+string(os.PathListSeparator)+"/usr/bin")
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
