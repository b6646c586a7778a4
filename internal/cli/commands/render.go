package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/loglines/internal/state"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Filter                 string
	FilterCaseSensitive    bool
	Highlight              string
	HighlightCaseSensitive bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a snapshot as log lines",
		Long: `Render a query-result snapshot as log lines, applying a filter and a
highlight term the same way the interactive viewers do.

Output adapts to environment:
  - Terminal: styled lines with highlighted matches
  - Piped/Scripted: Markdown list with matches in bold

Use --output to pick json, html or table explicitly.`,
		Example: `  # Render every line
  loglines render --data results.yaml

  # Keep lines mentioning "error" and highlight "disk"
  loglines render --data results.yaml --filter error --highlight disk

  # Filter one field only, case-sensitively
  loglines render --data results.yaml --filter ERROR --filter-field msg --case-sensitive

  # Read a snapshot from stdin and print JSON
  cat results.yaml | loglines render --data - --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Only show lines containing this text")
	cmd.Flags().BoolVar(&opts.FilterCaseSensitive, "case-sensitive", false, "Match the filter case-sensitively")
	cmd.Flags().StringVar(&opts.Highlight, "highlight", "", "Highlight this term in every shown line")
	cmd.Flags().BoolVar(&opts.HighlightCaseSensitive, "highlight-case-sensitive", false, "Match the highlight term case-sensitively")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cmdCtx := NewCommandContext(cmd)

	snap, err := cmdCtx.LoadSnapshot(cmd.InOrStdin())
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context(), snap, cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	if f := cmdCtx.Cfg.View.FilterField; f != "" && f != state.FilterAll {
		if err := s.SetFilterField(f); err != nil {
			return err
		}
	}
	if opts.FilterCaseSensitive {
		s.SetFilterCaseSensitive(true)
	}
	if opts.HighlightCaseSensitive {
		s.SetHighlightCaseSensitive(true)
	}
	if opts.Filter != "" {
		s.Filter(opts.Filter)
	}
	if opts.Highlight != "" {
		s.Highlight(opts.Highlight)
	}

	return printDocument(cmdCtx.Renderer, s)
}
