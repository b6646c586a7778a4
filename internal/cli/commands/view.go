package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/loglines/internal/tui"
)

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse a snapshot in the terminal",
		Long: `Open an interactive terminal viewer for a query-result snapshot.

The viewer shows one log line per row with a filter box, a highlight box
and a minimap of highlight matches. Drillable values open the drill menu
on click or with the drill key.

Logs are written to stderr, which the viewer hides; set log_file to keep them.`,
		Example: `  # Browse a snapshot
  loglines view --data results.yaml

  # Start with sparklines and debug logging to a file
  loglines view --data results.yaml --sparklines --log-file loglines.log --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd)
		},
	}
}

func runView(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	snap, err := cmdCtx.LoadSnapshot(cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := cmdCtx.PluginOptions()
	opts.MinThumbHeight = cmdCtx.Cfg.View.TUIMinThumbHeight

	return tui.Run(cmd.Context(), snap, tui.Options{
		Plugin:      opts,
		Vis:         snap.VisConfig(cmdCtx.Cfg.Vis),
		FilterField: cmdCtx.Cfg.View.FilterField,
		Logger:      cmdCtx.Logger,
	})
}
