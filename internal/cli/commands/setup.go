package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapfmt/internal/cache"
	"github.com/leapstack-labs/leapfmt/internal/cli/config"
	"github.com/leapstack-labs/leapfmt/internal/cli/output"
	"github.com/leapstack-labs/leapfmt/internal/engine"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Cache    *cache.Store
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer. The
// cache is opened unless disabled in the configuration.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return nil, nil, err
	}

	if cc.Cfg.Cache && cc.Cfg.CachePath != "" {
		store := cache.New(cc.Logger)
		if err := store.Open(cmd.Context(), cc.Cfg.CachePath); err != nil {
			// A broken cache only costs speed.
			cc.Logger.Warn("cache disabled", "path", cc.Cfg.CachePath, "error", err)
		} else {
			cc.Cache = store
		}
	}

	cleanup := func() {
		if cc.Cache != nil {
			_ = cc.Cache.Close()
		}
	}

	eng, err := createEngine(cc.Cfg, cc.Cache, cmd.Root().Version, cc.Logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cc.Engine = eng
	return cc, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that only read configuration.
func NewCommandContextWithoutEngine(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	r, ok := output.FromContext(cmd.Context())
	if !ok {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading
// it from the working directory when a command runs on its own.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg, nil
	}
	cfg, err := config.Load("", cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func createEngine(cfg *config.Config, store *cache.Store, version string, logger *slog.Logger) (*engine.Engine, error) {
	opts, err := cfg.StyleOptions()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		Style:   opts,
		Jobs:    cfg.Jobs,
		Cache:   store,
		Version: version,
		Exclude: cfg.Exclude,
		Logger:  logger,
	})
}
