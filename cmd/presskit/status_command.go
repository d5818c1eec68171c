package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"presskit/internal/config"
	"presskit/internal/deps"
	"presskit/internal/fileutil"
	"presskit/internal/pipeline"
	"presskit/internal/poster"
	"presskit/internal/preflight"
	"presskit/internal/theme"
)

var titleCaser = cases.Title(language.English)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report dependency, directory, and artifact state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				fmt.Fprintln(out, renderStatusLine(status.Name, dependencyKind(status), dependencyDetail(status), colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Directories", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Artifacts", colorize) {
				fmt.Fprintln(out, line)
			}
			rows, err := artifactRows(cfg)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, statusIndent+"no renders found; run `presskit render` first")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Theme", "Scene", "Video", "Poster"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func dependencyKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func dependencyDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	detail := status.Detail
	if status.Optional {
		detail += " (optional)"
	}
	return detail
}

// artifactRows reports per scene and theme whether the derived artifacts are
// fresh, stale, or missing relative to the raw render.
func artifactRows(cfg *config.Config) ([][]string, error) {
	var rows [][]string
	for _, th := range cfg.Themes {
		root, err := theme.ResolveRoot(cfg.Paths.BuildDir, th)
		if err != nil {
			if errors.Is(err, theme.ErrRootNotFound) {
				rows = append(rows, []string{titleCaser.String(th), "-", "no build root", "no build root"})
				continue
			}
			return nil, err
		}
		sources, err := pipeline.FindSources(root, poster.SourceExt)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			videoState, err := artifactState(src.Path,
				strings.TrimSuffix(src.Path, filepath.Ext(src.Path))+".webm",
				filepath.Join(cfg.VideosDir(), th, strings.TrimSuffix(src.Rel, filepath.Ext(src.Rel))+".webm"),
			)
			if err != nil {
				return nil, err
			}
			posterState, err := artifactState(src.Path,
				filepath.Join(cfg.BuildPostersDir(), theme.PosterName(src.Scene, th)),
				filepath.Join(cfg.PostersDir(), theme.PosterName(src.Scene, th)),
			)
			if err != nil {
				return nil, err
			}
			rows = append(rows, []string{titleCaser.String(th), src.Scene, videoState, posterState})
		}
	}
	return rows, nil
}

// artifactState checks candidate locations for a derived artifact: the build
// tree before staging and the site tree after. Any fresh candidate wins.
func artifactState(source string, candidates ...string) (string, error) {
	state := "missing"
	for _, candidate := range candidates {
		fresh, err := fileutil.IsNewer(candidate, source)
		if err != nil {
			return "", err
		}
		if fresh {
			return "fresh", nil
		}
		if _, statErr := os.Stat(candidate); statErr == nil {
			state = "stale"
		}
	}
	return state, nil
}
