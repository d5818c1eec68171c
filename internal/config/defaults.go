package config

const (
	defaultBuildDir             = "build"
	defaultSiteDir              = "site"
	defaultFiguresDir           = "figures"
	defaultRenderCommand        = "manim"
	defaultRenderTimeoutSeconds = 1800
	defaultEncodeCRF            = 32
	defaultEncodePixelFormat    = "yuv420p"
	defaultPosterQuality        = 2
	defaultVideosSubdir         = "assets/videos"
	defaultPostersSubdir        = "assets/posters"
	defaultImagesSubdir         = "assets/images"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultThemes() []string {
	return []string{"dark", "light"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Themes: defaultThemes(),
		Paths: Paths{
			BuildDir:   defaultBuildDir,
			SiteDir:    defaultSiteDir,
			FiguresDir: defaultFiguresDir,
		},
		Render: Render{
			Command:        defaultRenderCommand,
			Args:           []string{"render", "-qh"},
			TimeoutSeconds: defaultRenderTimeoutSeconds,
		},
		Encode: Encode{
			CRF:         defaultEncodeCRF,
			PixelFormat: defaultEncodePixelFormat,
		},
		Poster: Poster{
			Quality: defaultPosterQuality,
		},
		Stage: Stage{
			VideosSubdir:  defaultVideosSubdir,
			PostersSubdir: defaultPostersSubdir,
			ImagesSubdir:  defaultImagesSubdir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
