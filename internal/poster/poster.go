// Package poster extracts one still frame per rendered video, used as the
// preview image before the video loads.
package poster

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"presskit/internal/config"
	"presskit/internal/deps"
	"presskit/internal/ffmpeg"
	"presskit/internal/fileutil"
	"presskit/internal/logging"
	"presskit/internal/pipeline"
	"presskit/internal/theme"
)

// SourceExt is the extension of raw renderer output posters are pulled from.
const SourceExt = ".mp4"

// Options control one poster pass.
type Options struct {
	Quality int
	Force   bool
}

// Step extracts a poster frame for every raw render under each theme root.
// Posters for all themes land in one flat build-side directory,
// disambiguated by the theme suffix in the filename; staging relocates
// them into the site tree.
type Step struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   Options
}

func New(cfg *config.Config, logger *slog.Logger, opts Options) *Step {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Quality == 0 {
		opts.Quality = cfg.Poster.Quality
	}
	return &Step{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "poster")),
		opts:   opts,
	}
}

func (s *Step) Name() string { return "posters" }

func (s *Step) Run(ctx context.Context, themes []string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	if err := deps.Require("ffmpeg", s.cfg.FFmpegBinary()); err != nil {
		return summary, pipeline.Wrap(pipeline.ErrConfiguration, s.Name(), "preflight", "transcoder unavailable", err)
	}
	if err := os.MkdirAll(s.cfg.BuildPostersDir(), 0o755); err != nil {
		return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "prepare", "create posters directory", err)
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

		themeSummary, err := s.extractTheme(ctx, th, root)
		summary.Add(themeSummary)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *Step) extractTheme(ctx context.Context, th, root string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	sources, err := pipeline.FindSources(root, SourceExt)
	if err != nil {
		return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "discover", "scan theme root", err)
	}
	if len(sources) == 0 {
		s.logger.Info("no renders for posters",
			logging.String("theme", th),
			logging.String("root", root))
		return summary, nil
	}

	for _, src := range sources {
		output := filepath.Join(s.cfg.BuildPostersDir(), theme.PosterName(src.Scene, th))

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

		if err := s.extractOne(ctx, th, src.Path, output); err != nil {
			return summary, err
		}
		summary.Add(pipeline.Summary{Processed: 1})
	}
	return summary, nil
}

// extractOne writes through a temporary sibling and renames on success, so a
// reader never observes a half-written poster.
func (s *Step) extractOne(ctx context.Context, th, input, output string) error {
	temp := pipeline.TempPath(output)

	args := ffmpeg.PosterArgs(s.cfg.FFmpegBinary(), input, temp, s.opts.Quality, s.cfg.Poster.FrameSeconds)

	s.logger.Info("extracting poster",
		logging.String("theme", th),
		logging.String("input", input),
		logging.Int("quality", s.opts.Quality))

	start := time.Now()
	if err := ffmpeg.Run(ctx, args); err != nil {
		os.Remove(temp)
		return pipeline.Wrap(pipeline.ErrExternalTool, s.Name(), "extract", "extract poster for "+filepath.Base(input), err)
	}
	if err := os.Rename(temp, output); err != nil {
		os.Remove(temp)
		return pipeline.Wrap(pipeline.ErrValidation, s.Name(), "finalize", "publish poster", err)
	}

	s.logger.Info("poster extracted",
		logging.String("theme", th),
		logging.String("output", output),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
