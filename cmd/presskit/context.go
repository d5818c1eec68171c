package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"presskit/internal/config"
	"presskit/internal/ledger"
	"presskit/internal/logging"
	"presskit/internal/pipeline"
	"presskit/internal/theme"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath returns the --config override, or "" when the default
// resolution order applies.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// runPipeline resolves themes from positional args, opens the build ledger,
// and runs the given steps under the build lock. A ledger that fails to open
// degrades to an unrecorded run rather than blocking the pipeline.
func (c *commandContext) runPipeline(cmd *cobra.Command, args []string, buildSteps func(cfg *config.Config, logger *slog.Logger) []pipeline.Step) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	themes, err := theme.Parse(args, cfg.Themes)
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Warn("build ledger unavailable, run will not be recorded", logging.Error(err))
		store = nil
	}
	defer store.Close()

	runner := pipeline.NewRunner(cfg, logger, store, buildSteps(cfg, logger)...)
	return runner.Run(cmd.Context(), themes)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
