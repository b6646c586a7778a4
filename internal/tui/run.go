package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// Options configures the viewer.
type Options struct {
	Plugin      plugin.Options
	Vis         core.VisConfig
	FilterField string
	Logger      *slog.Logger
}

// DefaultMinThumbRows is the smallest minimap thumb, in rows, when none is configured.
const DefaultMinThumbRows = 1

// terminalOptions fills plugin defaults measured in cells. The plugin's own
// defaults are pixel sizes and would make the thumb fill a terminal track.
func terminalOptions(opts plugin.Options) plugin.Options {
	if opts.MinThumbHeight <= 0 {
		opts.MinThumbHeight = DefaultMinThumbRows
	}
	return opts
}

// programPoster posts tasks to a running program as taskMsg.
type programPoster struct {
	mu   sync.Mutex
	prog *tea.Program
}

func (pp *programPoster) set(prog *tea.Program) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.prog = prog
}

func (pp *programPoster) Post(t schedule.Task) {
	pp.mu.Lock()
	prog := pp.prog
	pp.mu.Unlock()
	if prog != nil {
		prog.Send(taskMsg(t))
	}
}

// Run shows snap in the terminal until the user quits or ctx is cancelled.
func Run(ctx context.Context, snap *host.Snapshot, opts Options) error {
	if snap == nil {
		return fmt.Errorf("no snapshot to show")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poster := &programPoster{}
	pluginOpts := terminalOptions(opts.Plugin)
	pluginOpts.Poster = poster
	pluginOpts.Logger = logger

	h := host.New(logger, nil)
	p := plugin.New(h, pluginOpts)
	m, err := New(ctx, p, h, snap, opts.Vis, opts.FilterField, logger)
	if err != nil {
		return err
	}

	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	poster.set(prog)

	logger.Debug("starting viewer", "rows", len(snap.Rows), "instance", p.ID())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
