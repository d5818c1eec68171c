package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateThemes(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validatePoster(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateThemes() error {
	if len(c.Themes) == 0 {
		return errors.New("themes must include at least one theme")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.BuildDir) == "" {
		return errors.New("paths.build_dir must be set")
	}
	if strings.TrimSpace(c.Paths.SiteDir) == "" {
		return errors.New("paths.site_dir must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	if strings.TrimSpace(c.Render.Command) == "" {
		return errors.New("render.command must be set")
	}
	if c.Render.TimeoutSeconds <= 0 {
		return errors.New("render.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEncode() error {
	// libvpx-vp9 accepts CRF 0-63.
	if c.Encode.CRF < 0 || c.Encode.CRF > 63 {
		return fmt.Errorf("encode.crf must be between 0 and 63, got %d", c.Encode.CRF)
	}
	if strings.TrimSpace(c.Encode.PixelFormat) == "" {
		return errors.New("encode.pix_fmt must be set")
	}
	return nil
}

func (c *Config) validatePoster() error {
	// ffmpeg -q:v for MJPEG output accepts 1-31.
	if c.Poster.Quality < 1 || c.Poster.Quality > 31 {
		return fmt.Errorf("poster.quality must be between 1 and 31, got %d", c.Poster.Quality)
	}
	if c.Poster.FrameSeconds < 0 {
		return errors.New("poster.frame_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
