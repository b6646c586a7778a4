package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/loglines/internal/cli/config"
	"github.com/leapstack-labs/loglines/internal/cli/output"
	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// LoadSnapshot reads the configured snapshot. "-" reads standard input.
func (c *CommandContext) LoadSnapshot(stdin io.Reader) (*host.Snapshot, error) {
	if err := c.Cfg.ValidateData(); err != nil {
		return nil, err
	}
	if c.Cfg.Data == "-" {
		snap, err := host.Decode(stdin, host.FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot from stdin: %w", err)
		}
		snap.Source = "stdin"
		return snap, nil
	}
	snap, err := host.Load(c.Cfg.Data)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("snapshot loaded", "path", snap.Source, "rows", len(snap.Rows), "fields", len(snap.Fields()))
	return snap, nil
}

// PluginOptions returns the engine options from the view configuration.
func (c *CommandContext) PluginOptions() plugin.Options {
	return pluginOptions(c.Cfg, c.Logger)
}

func pluginOptions(cfg *config.Config, logger *slog.Logger) plugin.Options {
	return plugin.Options{
		Separator:      cfg.View.Separator,
		Debounce:       cfg.View.Debounce(),
		MinThumbHeight: cfg.View.MinThumbHeight,
		MarkerHeight:   cfg.View.MarkerHeight,
		Logger:         logger,
	}
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands built outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
