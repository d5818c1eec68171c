package encode

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"presskit/internal/config"
	"presskit/internal/logging"
	"presskit/internal/pipeline"
	"presskit/internal/testsupport"
)

// fakeTranscode mimics a successful transcode by writing a byte to the final
// argument.
const fakeTranscode = `for a; do out=$a; done
echo encoded > "$out"
`

func stubbedConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", fakeTranscode))
}

func TestNewResolvesCRF(t *testing.T) {
	cfg := stubbedConfig(t)

	if got := New(cfg, nil, Options{CRF: -1}).opts.CRF; got != cfg.Encode.CRF {
		t.Errorf("negative CRF should fall back to config, got %d", got)
	}
	if got := New(cfg, nil, Options{CRF: 0}).opts.CRF; got != 0 {
		t.Errorf("lossless CRF 0 must be kept, got %d", got)
	}
	if got := New(cfg, nil, Options{CRF: 17}).opts.CRF; got != 17 {
		t.Errorf("explicit CRF must be kept, got %d", got)
	}
}

func TestRunEncodesSibling(t *testing.T) {
	cfg := stubbedConfig(t)
	src := testsupport.WriteRender(t, cfg, "dark", "sde_animation/intro.mp4")

	step := New(cfg, logging.NewNop(), Options{})
	summary, err := step.Run(context.Background(), []string{"dark"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v, want 1 processed", summary)
	}

	output := filepath.Join(filepath.Dir(src), "intro.webm")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output %s: %v", output, err)
	}
	if _, err := os.Stat(pipeline.TempPath(output)); !os.IsNotExist(err) {
		t.Errorf("temp file should be renamed away, stat err = %v", err)
	}
}

func TestRunSkipsFreshOutput(t *testing.T) {
	cfg := stubbedConfig(t)
	src := testsupport.WriteRender(t, cfg, "dark", "sde_animation/intro.mp4")

	output := filepath.Join(filepath.Dir(src), "intro.webm")
	testsupport.WriteFile(t, output, "old encode")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, past, past); err != nil {
		t.Fatal(err)
	}

	step := New(cfg, logging.NewNop(), Options{})
	summary, err := step.Run(context.Background(), []string{"dark"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Processed != 0 {
		t.Fatalf("summary = %+v, want 1 skipped", summary)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old encode" {
		t.Errorf("fresh output was rewritten")
	}
}

func TestRunForceReencodes(t *testing.T) {
	cfg := stubbedConfig(t)
	src := testsupport.WriteRender(t, cfg, "dark", "sde_animation/intro.mp4")

	output := filepath.Join(filepath.Dir(src), "intro.webm")
	testsupport.WriteFile(t, output, "old encode")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, past, past); err != nil {
		t.Fatal(err)
	}

	step := New(cfg, logging.NewNop(), Options{Force: true})
	summary, err := step.Run(context.Background(), []string{"dark"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want 1 processed", summary)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "old encode" {
		t.Errorf("force should rewrite the output")
	}
}

func TestRunSkipsUnresolvableTheme(t *testing.T) {
	cfg := stubbedConfig(t)
	testsupport.WriteRender(t, cfg, "dark", "sde_animation/intro.mp4")

	step := New(cfg, logging.NewNop(), Options{})
	summary, err := step.Run(context.Background(), []string{"light", "dark"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Processed != 1 {
		t.Fatalf("summary = %+v, want 1 skipped + 1 processed", summary)
	}
}

func TestRunFailureCleansTemp(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", `for a; do out=$a; done
echo partial > "$out"
echo "encoder exploded" >&2
exit 1
`))
	src := testsupport.WriteRender(t, cfg, "dark", "sde_animation/intro.mp4")

	step := New(cfg, logging.NewNop(), Options{})
	if _, err := step.Run(context.Background(), []string{"dark"}); err == nil {
		t.Fatal("expected error from failing encoder")
	}

	output := filepath.Join(filepath.Dir(src), "intro.webm")
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("failed encode must not publish an output")
	}
	if _, err := os.Stat(pipeline.TempPath(output)); !os.IsNotExist(err) {
		t.Errorf("temp file should be removed after failure")
	}
}
