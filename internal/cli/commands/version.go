package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/loglines/internal/cli/output"
	"github.com/leapstack-labs/loglines/internal/host"
)

// BuildInfo identifies a build of the binary.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the Log Lines version, the build it came from, and the
snapshot and output formats this build understands.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, info.Version)
				return
			}

			formats := make([]string, 0, len(host.Formats()))
			for _, f := range host.Formats() {
				formats = append(formats, string(f))
			}

			_, _ = fmt.Fprintf(out, "Log Lines v%s\n", info.Version)
			_, _ = fmt.Fprintln(out, "Query results as filterable, highlightable log lines")
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintf(out, "  %-10s %s\n", "Commit:", info.GitCommit)
			_, _ = fmt.Fprintf(out, "  %-10s %s\n", "Built:", info.BuildDate)
			_, _ = fmt.Fprintf(out, "  %-10s %s\n", "Snapshots:", strings.Join(formats, ", "))
			_, _ = fmt.Fprintf(out, "  %-10s %s\n", "Output:", strings.Join(output.Names(), ", "))
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
