// Package encode transcodes rendered videos to VP9/WebM for web delivery.
package encode

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"presskit/internal/config"
	"presskit/internal/deps"
	"presskit/internal/ffmpeg"
	"presskit/internal/fileutil"
	"presskit/internal/logging"
	"presskit/internal/pipeline"
	"presskit/internal/theme"
)

// SourceExt is the extension of raw renderer output.
const SourceExt = ".mp4"

// OutputExt is the extension of the transcoded artifact, written as a
// sibling of its source.
const OutputExt = ".webm"

// Options control one encode pass. The CLI seeds these from config and
// lets flags override them. A negative CRF means "use the configured
// value"; zero is a valid (lossless) setting and is kept as given.
type Options struct {
	CRF         int
	PixelFormat string
	Force       bool
}

// Step transcodes every raw render under each theme root. An output that is
// already newer than its source is skipped unless forced.
type Step struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   Options
}

func New(cfg *config.Config, logger *slog.Logger, opts Options) *Step {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.CRF < 0 {
		opts.CRF = cfg.Encode.CRF
	}
	if opts.PixelFormat == "" {
		opts.PixelFormat = cfg.Encode.PixelFormat
	}
	return &Step{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "encode")),
		opts:   opts,
	}
}

func (s *Step) Name() string { return "encode" }

func (s *Step) Run(ctx context.Context, themes []string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	if err := deps.Require("ffmpeg", s.cfg.FFmpegBinary()); err != nil {
		return summary, pipeline.Wrap(pipeline.ErrConfiguration, s.Name(), "preflight", "transcoder unavailable", err)
	}

	for _, th := range themes {
		root, err := theme.ResolveRoot(s.cfg.Paths.BuildDir, th)
		if err != nil {
			if errors.Is(err, theme.ErrRootNotFound) {
				s.logger.Warn("theme root not found, skipping",
					logging.String("theme", th))
				summary.Add(pipeline.Summary{Skipped: 1})
				continue
			}
			return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "resolve", "resolve theme root", err)
		}

		themeSummary, err := s.encodeTheme(ctx, th, root)
		summary.Add(themeSummary)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *Step) encodeTheme(ctx context.Context, th, root string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	sources, err := pipeline.FindSources(root, SourceExt)
	if err != nil {
		return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "discover", "scan theme root", err)
	}
	if len(sources) == 0 {
		s.logger.Info("no renders to encode",
			logging.String("theme", th),
			logging.String("root", root))
		return summary, nil
	}

	for _, src := range sources {
		output := strings.TrimSuffix(src.Path, filepath.Ext(src.Path)) + OutputExt

		if !s.opts.Force {
			fresh, err := fileutil.IsNewer(output, src.Path)
			if err != nil {
				return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "freshness", "compare timestamps", err)
			}
			if fresh {
				s.logger.Info("up to date, skipping",
					logging.String("theme", th),
					logging.String("scene", src.Scene))
				summary.Add(pipeline.Summary{Skipped: 1})
				continue
			}
		}

		if err := s.encodeOne(ctx, th, src.Path, output); err != nil {
			return summary, err
		}
		summary.Add(pipeline.Summary{Processed: 1})
	}
	return summary, nil
}

// encodeOne transcodes through a temporary sibling and renames over the
// destination so a killed run never leaves a truncated artifact behind.
func (s *Step) encodeOne(ctx context.Context, th, input, output string) error {
	temp := pipeline.TempPath(output)

	args := ffmpeg.WebMArgs(s.cfg.FFmpegBinary(), input, temp, s.opts.CRF, s.opts.PixelFormat)

	s.logger.Info("encoding",
		logging.String("theme", th),
		logging.String("input", input),
		logging.Int("crf", s.opts.CRF),
		logging.String("pix_fmt", s.opts.PixelFormat))

	start := time.Now()
	if err := ffmpeg.Run(ctx, args); err != nil {
		os.Remove(temp)
		return pipeline.Wrap(pipeline.ErrExternalTool, s.Name(), "transcode", "encode "+filepath.Base(input), err)
	}
	if err := os.Rename(temp, output); err != nil {
		os.Remove(temp)
		return pipeline.Wrap(pipeline.ErrValidation, s.Name(), "finalize", "publish encoded file", err)
	}

	s.logger.Info("encoded",
		logging.String("theme", th),
		logging.String("output", output),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
