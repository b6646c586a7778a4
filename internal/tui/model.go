// Package tui is the terminal surface of the engine.
//
// The bubbletea Update loop is the UI loop: debounced work arrives as
// taskMsg, and deferred post-layout work runs on frameMsg, which is only
// delivered after the preceding View has been drawn.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/pkg/core"
)

type (
	taskMsg  schedule.Task
	frameMsg struct{}
)

type focus int

const (
	focusBody focus = iota
	focusFilter
	focusSearch
)

// chrome lines around the body: header, inputs, status
const chromeHeight = 3

// Model is the bubbletea model of the viewer.
type Model struct {
	plugin *plugin.Plugin
	host   *host.Host
	screen *screen
	keys   KeyMap
	styles Styles
	logger *slog.Logger

	filter textinput.Model
	search textinput.Model
	focus  focus

	matchIdx int
	width    int
	height   int
	status   string
	dragging bool
}

// New creates a model around an existing plugin. The plugin is attached to
// the model's screen and rendered with snap.
func New(ctx context.Context, p *plugin.Plugin, h *host.Host, snap *host.Snapshot, cfg core.VisConfig, filterField string, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	styles := DefaultStyles()
	m := &Model{
		plugin: p,
		host:   h,
		screen: newScreen(styles),
		keys:   DefaultKeyMap(),
		styles: styles,
		logger: logger,
		filter: newInput("filter> ", "text to keep"),
		search: newInput("highlight> ", "text to mark"),
	}

	if err := p.Create(m.screen, cfg); err != nil {
		return nil, fmt.Errorf("failed to create view: %w", err)
	}
	if snap != nil {
		err := p.UpdateAsync(ctx, snap.Rows, m.screen, snap.VisConfig(cfg), snap.Shape, plugin.Details{Source: snap.Source, Reason: "initial"}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
	}
	if filterField != "" {
		p.SetFilterField(filterField)
	}
	return m, nil
}

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 256
	return in
}

// Init schedules the first post-layout pass.
func (m *Model) Init() tea.Cmd {
	return frameCmd
}

func frameCmd() tea.Msg {
	return frameMsg{}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, msg.Height-chromeHeight)
		m.filter.Width = max(10, msg.Width/2-12)
		m.search.Width = max(10, msg.Width/2-12)
		m.plugin.Resized()

	case taskMsg:
		msg()

	case frameMsg:
		m.plugin.Frame()

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case tea.KeyMsg:
		if cmd, quit := m.handleKey(msg); quit {
			return m, tea.Quit
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.plugin.PendingFrames() > 0 {
		cmds = append(cmds, frameCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.focus != focusBody {
		return m.handleInputKey(msg), false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Filter):
		m.focus = focusFilter
		return m.filter.Focus(), false
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m.search.Focus(), false
	case key.Matches(msg, m.keys.CycleField):
		m.cycleFilterField()
	case key.Matches(msg, m.keys.RowNumbers):
		m.plugin.ToggleRowNumbers(!m.plugin.View().ShowRowNumbers)
	case key.Matches(msg, m.keys.Sparklines):
		m.plugin.ToggleSparklines(!m.plugin.View().ShowSparklines)
	case key.Matches(msg, m.keys.FilterCase):
		m.plugin.SetFilterCaseSensitive(!m.plugin.View().FilterCaseSensitive)
	case key.Matches(msg, m.keys.HighlightCase):
		m.plugin.SetHighlightCaseSensitive(!m.plugin.View().HighlightCaseSensitive)
	case key.Matches(msg, m.keys.Clear):
		m.filter.SetValue("")
		m.search.SetValue("")
		m.matchIdx = 0
		m.plugin.Clear()
	case key.Matches(msg, m.keys.NextMatch):
		m.jumpMatch(1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.jumpMatch(-1)
	case key.Matches(msg, m.keys.Drill):
		m.drillCurrent()
	default:
		var cmd tea.Cmd
		before := m.screen.vp.YOffset
		m.screen.vp, cmd = m.screen.vp.Update(msg)
		if m.screen.vp.YOffset != before {
			m.plugin.Scrolled()
		}
		return cmd, false
	}
	return nil, false
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Blur) {
		m.filter.Blur()
		m.search.Blur()
		m.focus = focusBody
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusFilter:
		before := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if v := m.filter.Value(); v != before {
			m.plugin.FilterInput(v)
		}
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != before {
			m.matchIdx = 0
			m.plugin.HighlightInput(v)
		}
	}
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	row := msg.Y - 1
	onTrack := msg.X >= m.width-1

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if onTrack && row >= 0 {
				m.dragging = m.plugin.MinimapPointerDown(float64(row) + 0.5)
				return nil
			}
			m.drillAt(msg.X, row, msg.Y)
			return nil
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			var cmd tea.Cmd
			m.screen.vp, cmd = m.screen.vp.Update(msg)
			m.plugin.Scrolled()
			return cmd
		}
	case tea.MouseActionMotion:
		if m.dragging {
			m.plugin.MinimapPointerMove(float64(row) + 0.5)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.plugin.MinimapPointerUp()
			m.dragging = false
		}
	}
	return nil
}

func (m *Model) drillAt(x, row, y int) {
	pos, field, ok := m.screen.fieldAt(x, row)
	if !ok {
		return
	}
	m.drill(pos, field, core.PointerEvent{X: float64(x), Y: float64(y), Button: core.PointerPrimary})
}

func (m *Model) drillCurrent() {
	pos, ok := m.currentMatchLine()
	if !ok {
		pos = m.screen.vp.YOffset
	}
	doc := m.plugin.Document()
	if pos < 0 || pos >= len(doc.Lines) {
		return
	}
	fields := doc.Lines[pos].DrillFields()
	if len(fields) == 0 {
		m.status = "nothing to drill on this line"
		return
	}
	m.drill(pos, fields[0], core.PointerEvent{Button: core.PointerNone})
}

func (m *Model) drill(pos int, field string, ev core.PointerEvent) {
	if err := m.plugin.Drill(pos, field, ev); err != nil {
		return
	}
	req, ok := m.host.Last()
	if !ok || len(req.Links) == 0 {
		return
	}
	labels := make([]string, 0, len(req.Links))
	for _, l := range req.Links {
		labels = append(labels, fmt.Sprintf("%s (%s)", l.Label, l.URL))
	}
	m.status = fmt.Sprintf("drill %s: %s", req.Field, strings.Join(labels, ", "))
}

func (m *Model) cycleFilterField() {
	v := m.plugin.View()
	targets := v.FilterTargets()
	next := state.FilterAll
	for i, t := range targets {
		if t == v.FilterField {
			next = targets[(i+1)%len(targets)]
			break
		}
	}
	m.plugin.SetFilterField(next)
}

func (m *Model) currentMatchLine() (int, bool) {
	lines := m.plugin.Matches().Lines
	if len(lines) == 0 {
		return 0, false
	}
	m.matchIdx = ((m.matchIdx % len(lines)) + len(lines)) % len(lines)
	return lines[m.matchIdx], true
}

// jumpMatch scrolls the next or previous matched line to the middle of the body.
func (m *Model) jumpMatch(step int) {
	lines := m.plugin.Matches().Lines
	if len(lines) == 0 {
		m.status = "no matches"
		return
	}
	m.matchIdx += step
	pos, _ := m.currentMatchLine()
	top := math.Max(0, float64(pos-m.screen.vp.Height/2))
	m.screen.ScrollTo(top)
	m.plugin.Scrolled()
	m.status = fmt.Sprintf("match %d/%d on line %d", m.matchIdx+1, len(lines), pos+1)
}

// View draws the header, body with minimap, inputs and status line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.screen.HeaderView())
	b.WriteString("\n")
	b.WriteString(m.screen.BodyView())
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("  ")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(m.statusLine()))
	return b.String()
}

func (m *Model) statusLine() string {
	v := m.plugin.View()
	doc := m.plugin.Document()
	res := m.plugin.Matches()

	parts := []string{fmt.Sprintf("%d/%d rows", doc.Stats.Shown, doc.Stats.Total)}
	if res.Term != "" {
		parts = append(parts, fmt.Sprintf("%d matches in %d lines", res.Matches, len(res.Lines)))
	}
	parts = append(parts, "field: "+v.FilterField)
	if v.FilterCaseSensitive {
		parts = append(parts, "filter Aa")
	}
	if v.HighlightCaseSensitive {
		parts = append(parts, "highlight Aa")
	}
	if doc.Stats.FilterErr != nil {
		parts = append(parts, "filter failed, showing all rows")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	var help []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	parts = append(parts, m.styles.Muted.Render(strings.Join(help, " · ")))
	return strings.Join(parts, " │ ")
}
