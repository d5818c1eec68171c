// Package stage relocates encoded videos and poster frames from the build
// tree into the deployable site tree, and copies static figures alongside.
package stage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"presskit/internal/config"
	"presskit/internal/encode"
	"presskit/internal/fileutil"
	"presskit/internal/logging"
	"presskit/internal/pipeline"
	"presskit/internal/theme"
)

// Options control one staging pass.
type Options struct {
	// Copy preserves sources instead of moving them.
	Copy bool
}

// Step publishes build artifacts into the site tree. Videos keep their path
// relative to the theme root under a per-theme destination; posters flatten
// into one directory. The figures directory is copied wholesale regardless
// of theme selection.
type Step struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   Options
}

func New(cfg *config.Config, logger *slog.Logger, opts Options) *Step {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Step{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "stage")),
		opts:   opts,
	}
}

func (s *Step) Name() string { return "stage" }

func (s *Step) Run(ctx context.Context, themes []string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	var walkedRoots []string
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
		walkedRoots = append(walkedRoots, root)

		videoSummary, err := s.stageVideos(th, root)
		summary.Add(videoSummary)
		if err != nil {
			return summary, err
		}

		posterSummary, err := s.stagePosters(th)
		summary.Add(posterSummary)
		if err != nil {
			return summary, err
		}
	}

	if err := s.stageFigures(); err != nil {
		return summary, err
	}

	s.prune(walkedRoots)

	s.logger.Info("staged assets available",
		logging.String("site", s.cfg.Paths.SiteDir),
		logging.Int("staged", summary.Processed))
	return summary, nil
}

// videoExts are the extensions relocated into the videos destination. The
// raw render goes along with its transcode so the site can offer it as a
// fallback source.
var videoExts = []string{encode.OutputExt, encode.SourceExt}

// stageVideos relocates every video under root, preserving the path relative
// to the theme root below a per-theme directory.
func (s *Step) stageVideos(th, root string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	for _, ext := range videoExts {
		sources, err := pipeline.FindSources(root, ext)
		if err != nil {
			return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "discover", "scan theme root", err)
		}
		for _, src := range sources {
			dest := filepath.Join(s.cfg.VideosDir(), th, src.Rel)
			if err := s.relocate(src.Path, dest); err != nil {
				return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "videos", "stage "+src.Rel, err)
			}
			s.logger.Info("staged video",
				logging.String("theme", th),
				logging.String("dest", dest))
			summary.Add(pipeline.Summary{Processed: 1})
		}
	}
	return summary, nil
}

// stagePosters relocates this theme's posters, identified by the filename
// suffix, from the build posters directory into the flat site destination.
func (s *Step) stagePosters(th string) (pipeline.Summary, error) {
	var summary pipeline.Summary

	suffix := "-" + th + ".jpg"
	entries, err := os.ReadDir(s.cfg.BuildPostersDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return summary, nil
		}
		return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "posters", "read posters directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if pipeline.IsTempName(entry.Name()) {
			continue
		}
		src := filepath.Join(s.cfg.BuildPostersDir(), entry.Name())
		dest := filepath.Join(s.cfg.PostersDir(), entry.Name())
		if err := s.relocate(src, dest); err != nil {
			return summary, pipeline.Wrap(pipeline.ErrValidation, s.Name(), "posters", "stage "+entry.Name(), err)
		}
		s.logger.Info("staged poster",
			logging.String("theme", th),
			logging.String("dest", dest))
		summary.Add(pipeline.Summary{Processed: 1})
	}
	return summary, nil
}

// stageFigures copies the static figures tree into the site images
// destination. Figures are source material, so this always copies and never
// moves. A missing figures directory is not an error.
func (s *Step) stageFigures() error {
	src := s.cfg.Paths.FiguresDir
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("figures directory not found, skipping",
				logging.String("figures", src))
			return nil
		}
		return pipeline.Wrap(pipeline.ErrValidation, s.Name(), "figures", "stat figures directory", err)
	}

	dest := filepath.Join(s.cfg.ImagesDir(), filepath.Base(src))
	if err := fileutil.CopyTree(src, dest); err != nil {
		return pipeline.Wrap(pipeline.ErrValidation, s.Name(), "figures", "copy figures tree", err)
	}
	s.logger.Info("staged figures", logging.String("dest", dest))
	return nil
}

func (s *Step) relocate(src, dest string) error {
	if s.opts.Copy {
		return fileutil.CopyFile(src, dest)
	}
	return fileutil.MoveFile(src, dest)
}

// prune removes directories emptied by the moves. Best effort: failures are
// swallowed and staging still succeeds.
func (s *Step) prune(roots []string) {
	roots = append(roots, s.cfg.BuildPostersDir())
	for _, root := range roots {
		for _, dir := range fileutil.PruneEmptyDirs(root) {
			s.logger.Debug("pruned empty directory", logging.String("dir", dir))
		}
	}
}
