package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/loglines/internal/cli/config"
	"github.com/leapstack-labs/loglines/internal/ui"
	"github.com/leapstack-labs/loglines/internal/ui/features/grid"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port          int
	NoBrowser     bool
	Watch         bool
	SessionSecret string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Serve the log lines view in a browser",
		Long: `Start a local web server showing a query-result snapshot as log lines.

Each browser session gets its own view with filter, highlight, minimap and
drill menu. With --watch the snapshot file is reloaded when it changes and
every open page updates.`,
		Example: `  # Serve on the default port
  loglines serve --data results.yaml

  # Serve on a custom port without opening a browser
  loglines serve --data results.yaml --port 3000 --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the snapshot when it changes")
	cmd.Flags().StringVar(&opts.SessionSecret, "session-secret", "", "Secret used to sign session cookies")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	snap, err := cmdCtx.LoadSnapshot(cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Flags are folded into the config when it is loaded; these cover
	// commands built without the root command.
	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := cfg.UI.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}
	secret := cfg.UI.SessionSecret
	if opts.SessionSecret != "" {
		secret = opts.SessionSecret
	}
	if secret == "" {
		secret = config.DefaultSessionSecret
	}
	autoOpen := cfg.UI.AutoOpen && !opts.NoBrowser

	snapshotPath := cfg.Data
	if snapshotPath == "-" {
		snapshotPath = ""
		watch = false
	}

	server := ui.NewServer(ui.Config{
		Snapshot:      snap,
		SnapshotPath:  snapshotPath,
		Vis:           cfg.Vis,
		Plugin:        cmdCtx.PluginOptions(),
		Port:          port,
		Watch:         watch,
		SessionSecret: secret,
		Sessions:      grid.Limits{IdleTTL: cfg.UI.SessionTTL(), Max: cfg.UI.MaxSessions},
		Logger:        cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r.Printf("Serving %s on %s\n", snap.Source, url)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
