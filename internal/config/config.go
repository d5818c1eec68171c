package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for the pipeline.
type Paths struct {
	BuildDir   string `toml:"build_dir"`
	SiteDir    string `toml:"site_dir"`
	FiguresDir string `toml:"figures_dir"`
	LogDir     string `toml:"log_dir"`
}

// Render contains configuration for the external animation renderer.
type Render struct {
	Command        string   `toml:"command"`
	Args           []string `toml:"args"`
	Scenes         []string `toml:"scenes"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Encode contains configuration for the WebM transcode profile.
type Encode struct {
	CRF          int    `toml:"crf"`
	PixelFormat  string `toml:"pix_fmt"`
	FFmpegBinary string `toml:"ffmpeg_binary"`
}

// Poster contains configuration for poster frame extraction.
type Poster struct {
	// Quality is the ffmpeg -q:v value for the extracted JPEG (lower is better).
	Quality int `toml:"quality"`
	// FrameSeconds is the seek offset of the extracted frame.
	FrameSeconds float64 `toml:"frame_seconds"`
}

// Stage contains the site-relative destinations for staged assets.
type Stage struct {
	VideosSubdir  string `toml:"videos_subdir"`
	PostersSubdir string `toml:"posters_subdir"`
	ImagesSubdir  string `toml:"images_subdir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates every knob the presskit pipeline reads.
//
// Sections by concern:
//   - Themes: the ordered theme tags assets are partitioned by
//   - Paths: build tree, site tree, static figures, and log directory
//   - Render: external renderer command, scene list, and timeout
//   - Encode: VP9/WebM transcode profile and ffmpeg binary
//   - Poster: still-frame extraction quality and seek offset
//   - Stage: destinations under the site assets tree
//   - Logging: log format and level
type Config struct {
	Themes  []string `toml:"themes"`
	Paths   Paths    `toml:"paths"`
	Render  Render   `toml:"render"`
	Encode  Encode   `toml:"encode"`
	Poster  Poster   `toml:"poster"`
	Stage   Stage    `toml:"stage"`
	Logging Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/presskit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("presskit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
// The figures directory is source material and is never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.BuildDir, c.Paths.SiteDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the transcoder executable name.
func (c *Config) FFmpegBinary() string {
	binary := strings.TrimSpace(c.Encode.FFmpegBinary)
	if binary == "" {
		return "ffmpeg"
	}
	return binary
}

// RenderCommand returns the renderer executable name.
func (c *Config) RenderCommand() string {
	command := strings.TrimSpace(c.Render.Command)
	if command == "" {
		return defaultRenderCommand
	}
	return command
}

// VideosDir returns the absolute staging destination for transcoded videos.
func (c *Config) VideosDir() string {
	return filepath.Join(c.Paths.SiteDir, c.Stage.VideosSubdir)
}

// PostersDir returns the absolute staging destination for poster images.
func (c *Config) PostersDir() string {
	return filepath.Join(c.Paths.SiteDir, c.Stage.PostersSubdir)
}

// BuildPostersDir returns the build-side directory poster frames are
// extracted into before staging relocates them. Posters for every theme
// share it, told apart by the theme suffix in the filename.
func (c *Config) BuildPostersDir() string {
	return filepath.Join(c.Paths.BuildDir, "posters")
}

// ImagesDir returns the absolute staging destination for static images.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Paths.SiteDir, c.Stage.ImagesSubdir)
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeThemes()
	c.normalizeRender()
	c.normalizeEncode()
	c.normalizeStage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.BuildDir, err = expandPath(c.Paths.BuildDir); err != nil {
		return fmt.Errorf("paths.build_dir: %w", err)
	}
	if c.Paths.SiteDir, err = expandPath(c.Paths.SiteDir); err != nil {
		return fmt.Errorf("paths.site_dir: %w", err)
	}
	if c.Paths.FiguresDir, err = expandPath(c.Paths.FiguresDir); err != nil {
		return fmt.Errorf("paths.figures_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.BuildDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeThemes() {
	if len(c.Themes) == 0 {
		c.Themes = defaultThemes()
		return
	}
	normalized := make([]string, 0, len(c.Themes))
	seen := map[string]struct{}{}
	for _, theme := range c.Themes {
		theme = strings.ToLower(strings.TrimSpace(theme))
		if theme == "" {
			continue
		}
		if _, ok := seen[theme]; ok {
			continue
		}
		seen[theme] = struct{}{}
		normalized = append(normalized, theme)
	}
	c.Themes = normalized
}

func (c *Config) normalizeRender() {
	c.Render.Command = strings.TrimSpace(c.Render.Command)
	if c.Render.Command == "" {
		c.Render.Command = defaultRenderCommand
	}
	if c.Render.TimeoutSeconds <= 0 {
		c.Render.TimeoutSeconds = defaultRenderTimeoutSeconds
	}
}

func (c *Config) normalizeEncode() {
	c.Encode.PixelFormat = strings.TrimSpace(c.Encode.PixelFormat)
	if c.Encode.PixelFormat == "" {
		c.Encode.PixelFormat = defaultEncodePixelFormat
	}
	c.Encode.FFmpegBinary = strings.TrimSpace(c.Encode.FFmpegBinary)
}

func (c *Config) normalizeStage() {
	if strings.TrimSpace(c.Stage.VideosSubdir) == "" {
		c.Stage.VideosSubdir = defaultVideosSubdir
	}
	if strings.TrimSpace(c.Stage.PostersSubdir) == "" {
		c.Stage.PostersSubdir = defaultPostersSubdir
	}
	if strings.TrimSpace(c.Stage.ImagesSubdir) == "" {
		c.Stage.ImagesSubdir = defaultImagesSubdir
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
