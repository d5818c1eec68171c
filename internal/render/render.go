// Package render invokes the external animation renderer once per theme.
// The renderer is treated as a black box; the only contract is the command
// line, the THEME environment variable, and the exit code.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"presskit/internal/config"
	"presskit/internal/deps"
	"presskit/internal/logging"
	"presskit/internal/pipeline"
	"presskit/internal/theme"
)

// ThemeEnvVar names the variable carrying the active theme to the renderer.
const ThemeEnvVar = "THEME"

// Step renders every configured scene for each requested theme. Output
// lands under the theme's render directory inside the build tree.
type Step struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Step {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Step{cfg: cfg, logger: logger.With(logging.String(logging.FieldComponent, "render"))}
}

func (s *Step) Name() string { return "render" }

// Run invokes the renderer sequentially per theme. The first failing
// invocation aborts; earlier themes' output stays on disk.
func (s *Step) Run(ctx context.Context, themes []string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	command := s.cfg.RenderCommand()
	if err := deps.Require("renderer", command); err != nil {
		return summary, pipeline.Wrap(pipeline.ErrConfiguration, s.Name(), "preflight", "renderer unavailable", err)
	}

	for _, th := range themes {
		if err := s.renderTheme(ctx, th); err != nil {
			return summary, err
		}
		summary.Add(pipeline.Summary{Processed: 1})
	}
	return summary, nil
}

func (s *Step) renderTheme(ctx context.Context, th string) error {
	mediaDir := theme.RenderDir(s.cfg.Paths.BuildDir, th)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return pipeline.Wrap(pipeline.ErrValidation, s.Name(), "prepare", "create render directory", err)
	}

	if s.cfg.Render.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.Render.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	args := append([]string{}, s.cfg.Render.Args...)
	args = append(args, "--media_dir", mediaDir)
	args = append(args, s.cfg.Render.Scenes...)

	cmd := exec.CommandContext(ctx, s.cfg.RenderCommand(), args...)
	cmd.Env = append(os.Environ(), ThemeEnvVar+"="+th)
	cmd.Stdout = os.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.logger.Info("rendering theme",
		logging.String("theme", th),
		logging.String("command", s.cfg.RenderCommand()),
		logging.String("media_dir", mediaDir))

	start := time.Now()
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		msg := fmt.Sprintf("renderer failed for theme %s", th)
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return pipeline.Wrap(pipeline.ErrExternalTool, s.Name(), "render", msg, err)
	}

	s.logger.Info("theme rendered",
		logging.String("theme", th),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
