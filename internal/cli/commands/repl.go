package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/loglines/internal/cli/output"
)

const replPrompt = "loglines> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Explore a snapshot interactively from a prompt",
		Long: `Start a prompt for filtering and highlighting a snapshot.

Plain input sets the filter and prints the matching lines. Dot-commands
change the highlight term, toggles and filter field; type .help for the list.`,
		Example: `  loglines repl --data results.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	if cmdCtx.Cfg.Data == "-" {
		return fmt.Errorf("repl reads commands from stdin; pass a snapshot file with --data")
	}

	snap, err := cmdCtx.LoadSnapshot(cmd.InOrStdin())
	if err != nil {
		return err
	}
	s, err := newSession(cmd.Context(), snap, cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newREPLCompleter(s),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("Log Lines REPL (%s, %d rows)\n", snap.Source, len(snap.Rows))
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	sh := &shell{s: s, r: r}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if sh.exec(line) {
			break
		}
	}
	return nil
}

// historyFile keeps REPL history in the user cache directory, or nowhere
// when there is none.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "loglines")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

// shell executes REPL input against a session.
type shell struct {
	s *session
	r *output.Renderer
}

// exec runs one line of input and reports whether the REPL should exit.
func (sh *shell) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ".") {
		sh.s.Filter(line)
		sh.show()
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(sh.r.Writer())

	case ".filter":
		sh.s.Filter(arg)
		sh.show()

	case ".highlight", ".hl":
		sh.s.Highlight(arg)
		sh.show()

	case ".field":
		if arg == "" {
			sh.r.Println(strings.Join(sh.s.View().FilterTargets(), " "))
			return false
		}
		if err := sh.s.SetFilterField(arg); err != nil {
			sh.r.Error(err.Error())
			return false
		}
		sh.show()

	case ".case":
		sh.setCase(arg)

	case ".rows":
		on, ok := sh.toggle(arg, sh.s.View().ShowRowNumbers)
		if ok {
			sh.s.ToggleRowNumbers(on)
			sh.show()
		}

	case ".sparklines":
		on, ok := sh.toggle(arg, sh.s.View().ShowSparklines)
		if ok {
			sh.s.ToggleSparklines(on)
			sh.show()
		}

	case ".show":
		sh.show()

	case ".stats":
		sh.stats()

	case ".drill":
		sh.drill(arg)

	case ".clear":
		sh.s.Clear()
		sh.show()

	default:
		sh.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

func (sh *shell) show() {
	if err := printDocument(sh.r, sh.s); err != nil {
		sh.r.Error(err.Error())
	}
}

// toggle parses on/off, flipping current when arg is empty.
func (sh *shell) toggle(arg string, current bool) (bool, bool) {
	switch strings.ToLower(arg) {
	case "":
		return !current, true
	case "on", "true", "yes":
		return true, true
	case "off", "false", "no":
		return false, true
	}
	sh.r.Error(fmt.Sprintf("expected on or off, got %q", arg))
	return false, false
}

func (sh *shell) setCase(arg string) {
	target, value, _ := strings.Cut(arg, " ")
	vs := sh.s.View()
	switch strings.ToLower(target) {
	case "filter":
		if on, ok := sh.toggle(strings.TrimSpace(value), vs.FilterCaseSensitive); ok {
			sh.s.SetFilterCaseSensitive(on)
			sh.show()
		}
	case "highlight":
		if on, ok := sh.toggle(strings.TrimSpace(value), vs.HighlightCaseSensitive); ok {
			sh.s.SetHighlightCaseSensitive(on)
			sh.show()
		}
	default:
		sh.r.Error("Usage: .case filter|highlight [on|off]")
	}
}

func (sh *shell) stats() {
	vs := sh.s.View()
	doc := sh.s.Document()
	res := sh.s.plugin.Matches()

	sh.r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d/%d", doc.Stats.Shown, doc.Stats.Total)))
	sh.r.Println(output.FormatKeyValue("Filter", fmt.Sprintf("%q on %s (case-sensitive: %t)", vs.FilterText, vs.FilterField, vs.FilterCaseSensitive)))
	sh.r.Println(output.FormatKeyValue("Highlight", fmt.Sprintf("%q (case-sensitive: %t)", vs.HighlightText, vs.HighlightCaseSensitive)))
	sh.r.Println(output.FormatKeyValue("Matches", fmt.Sprintf("%d in %d lines", res.Matches, len(res.Lines))))
	if res.Err != nil {
		sh.r.Warning(res.Err.Error())
	}
	if doc.Stats.FilterErr != nil {
		sh.r.Warning(doc.Stats.FilterErr.Error())
	}
}

// drill takes a displayed line number (1-based) and a field name.
func (sh *shell) drill(arg string) {
	parts := strings.Fields(arg)
	if len(parts) != 2 {
		sh.r.Error("Usage: .drill <line> <field>")
		return
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 {
		sh.r.Error(fmt.Sprintf("invalid line %q", parts[0]))
		return
	}
	req, err := sh.s.Drill(n-1, parts[1])
	if err != nil {
		sh.r.Error(err.Error())
		return
	}
	sh.r.Header(2, "Drill: "+req.Field)
	for _, l := range req.Links {
		sh.r.Println(output.FormatKeyValue(l.Label, l.URL))
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .filter <text>               Show only lines containing text
  .field [name]                Filter one field (or "all"); lists fields without a name
  .highlight <text>            Highlight text in the shown lines (alias .hl)
  .case filter|highlight [on|off]
                               Toggle case-sensitive matching
  .rows [on|off]               Toggle row numbers
  .sparklines [on|off]         Toggle measure sparklines
  .drill <line> <field>        Show the drill targets of a value
  .show                        Print the current lines
  .stats                       Show filter and highlight state
  .clear                       Reset filter and highlight
  .quit / .exit                Exit the REPL

Tips:
  - Plain input is used as the filter
  - Use arrow keys to navigate history
  - Tab completion works for commands and field names
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and field names.
func newREPLCompleter(s *session) *readline.PrefixCompleter {
	var fields []readline.PrefixCompleterInterface
	for _, t := range s.View().FilterTargets() {
		fields = append(fields, readline.PcItem(t))
	}
	onOff := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{readline.PcItem("on"), readline.PcItem("off")}
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".filter"),
		readline.PcItem(".field", fields...),
		readline.PcItem(".highlight"),
		readline.PcItem(".case",
			readline.PcItem("filter", onOff()...),
			readline.PcItem("highlight", onOff()...),
		),
		readline.PcItem(".rows", onOff()...),
		readline.PcItem(".sparklines", onOff()...),
		readline.PcItem(".drill"),
		readline.PcItem(".show"),
		readline.PcItem(".stats"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
