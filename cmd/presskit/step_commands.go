package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"presskit/internal/config"
	"presskit/internal/encode"
	"presskit/internal/pipeline"
	"presskit/internal/poster"
	"presskit/internal/render"
	"presskit/internal/stage"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render [theme...]",
		Short: "Render animations for the given themes (default: all configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, args, func(cfg *config.Config, logger *slog.Logger) []pipeline.Step {
				return []pipeline.Step{render.New(cfg, logger)}
			})
		},
	}
}

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var crf int
	var pixFmt string
	var force bool

	cmd := &cobra.Command{
		Use:   "encode [theme...]",
		Short: "Transcode rendered videos to WebM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, args, func(cfg *config.Config, logger *slog.Logger) []pipeline.Step {
				opts := encode.Options{CRF: crf, PixelFormat: pixFmt, Force: force}
				return []pipeline.Step{encode.New(cfg, logger, opts)}
			})
		},
	}
	addEncodeFlags(cmd, &crf, &pixFmt, &force)
	return cmd
}

func newPostersCommand(ctx *commandContext) *cobra.Command {
	var quality int
	var force bool

	cmd := &cobra.Command{
		Use:   "posters [theme...]",
		Short: "Extract a poster frame per rendered video",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, args, func(cfg *config.Config, logger *slog.Logger) []pipeline.Step {
				opts := poster.Options{Quality: quality, Force: force}
				return []pipeline.Step{poster.New(cfg, logger, opts)}
			})
		},
	}
	addPosterFlags(cmd, &quality, &force)
	return cmd
}

func newStageCommand(ctx *commandContext) *cobra.Command {
	var copyMode bool

	cmd := &cobra.Command{
		Use:   "stage [theme...]",
		Short: "Relocate encoded assets into the site tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, args, func(cfg *config.Config, logger *slog.Logger) []pipeline.Step {
				return []pipeline.Step{stage.New(cfg, logger, stage.Options{Copy: copyMode})}
			})
		},
	}
	cmd.Flags().BoolVar(&copyMode, "copy", false, "Copy assets instead of moving them")
	return cmd
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var crf int
	var pixFmt string
	var quality int
	var force bool
	var copyMode bool

	cmd := &cobra.Command{
		Use:   "build [theme...]",
		Short: "Run render, encode, posters, and stage in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, args, func(cfg *config.Config, logger *slog.Logger) []pipeline.Step {
				return []pipeline.Step{
					render.New(cfg, logger),
					encode.New(cfg, logger, encode.Options{CRF: crf, PixelFormat: pixFmt, Force: force}),
					poster.New(cfg, logger, poster.Options{Quality: quality, Force: force}),
					stage.New(cfg, logger, stage.Options{Copy: copyMode}),
				}
			})
		},
	}
	addEncodeFlags(cmd, &crf, &pixFmt, &force)
	cmd.Flags().IntVar(&quality, "quality", 0, "Poster JPEG quality, 1 best to 31 worst (default from config)")
	cmd.Flags().BoolVar(&copyMode, "copy", false, "Copy assets instead of moving them")
	return cmd
}

func addEncodeFlags(cmd *cobra.Command, crf *int, pixFmt *string, force *bool) {
	cmd.Flags().IntVar(crf, "crf", -1, "VP9 constant-quality factor, 0-63 (default from config)")
	cmd.Flags().StringVar(pixFmt, "pix-fmt", "", "Output pixel format (default from config)")
	cmd.Flags().BoolVar(force, "force", false, "Regenerate even when outputs are up to date")
}

func addPosterFlags(cmd *cobra.Command, quality *int, force *bool) {
	cmd.Flags().IntVar(quality, "quality", 0, "Poster JPEG quality, 1 best to 31 worst (default from config)")
	cmd.Flags().BoolVar(force, "force", false, "Regenerate even when posters are up to date")
}
