package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"democap/internal/capture"
	"democap/internal/catalog"
	"democap/internal/config"
	"democap/internal/deps"
	"democap/internal/logging"
	"democap/internal/media/ffprobe"
	"democap/internal/preflight"
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

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
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

// openCatalog returns nil when the catalog cannot be opened; recording still
// proceeds without bookkeeping.
func (c *commandContext) openCatalog(logger *slog.Logger) *catalog.Store {
	store, err := catalog.Open(c.configValue())
	if err != nil {
		logger.Warn("recordings catalog unavailable; continuing without it",
			logging.Error(err),
			logging.String(logging.FieldEventType, "catalog_unavailable"),
		)
		return nil
	}
	return store
}

// sessionOptions wires the catalog and optional ffprobe verification into
// the configured capture options.
func (c *commandContext) sessionOptions(cfg *config.Config, store *catalog.Store, logger *slog.Logger) capture.Options {
	opts := capture.OptionsFromConfig(cfg)
	opts.Logger = logger
	if store != nil {
		opts.Ledger = store
	}
	if cfg.Capture.VerifyWithFFprobe {
		binary := cfg.Encoder.FFprobeBinary
		opts.Verify = func(ctx context.Context, path string) error {
			_, err := ffprobe.Verify(ctx, binary, path)
			return err
		}
	}
	return opts
}

func runPreflight(ctx context.Context, cfg *config.Config, scope preflight.Scope, logger *slog.Logger) error {
	failed := preflight.Failed(preflight.RunAll(ctx, cfg, scope))
	for _, dep := range deps.Missing(preflight.CheckSystemDeps(cfg)) {
		failed = append(failed, preflight.Result{Name: dep.Name, Detail: dep.Detail})
	}
	if len(failed) == 0 {
		return nil
	}
	problems := make([]string, 0, len(failed))
	for _, result := range failed {
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
		)
		problems = append(problems, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(problems, "; "))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
