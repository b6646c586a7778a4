package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/loglines/internal/cli/config"
	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// sheet is a container with no viewport: every line is visible at once, so
// the minimap never shows and markers are never placed.
type sheet struct {
	doc *render.Document
}

var _ plugin.Container = (*sheet)(nil)

func (s *sheet) Has(string) bool { return true }

func (s *sheet) Mount(doc *render.Document) { s.doc = doc }

func (s *sheet) Metrics() minimap.Metrics {
	h := 0.0
	if s.doc != nil {
		h = float64(len(s.doc.Lines))
	}
	return minimap.Metrics{ScrollHeight: h, ClientHeight: h, MinimapHeight: h}
}

func (s *sheet) LineOffset(pos int) float64 { return float64(pos) }

func (s *sheet) ScrollTo(float64) {}

func (s *sheet) ShowMinimap(plugin.MinimapView) {}

// session drives a plugin without a UI loop. Input is applied by advancing a
// manual clock past the debounce delay, then running the deferred frame.
type session struct {
	plugin *plugin.Plugin
	host   *host.Host
	snap   *host.Snapshot
	sheet  *sheet
	timers *schedule.ManualTimers
	delay  time.Duration
}

func newSession(ctx context.Context, snap *host.Snapshot, cfg *config.Config, logger *slog.Logger) (*session, error) {
	if snap == nil {
		return nil, fmt.Errorf("no snapshot loaded")
	}
	opts := pluginOptions(cfg, logger)
	timers := &schedule.ManualTimers{}
	opts.Poster = schedule.Inline{}
	opts.Timers = timers

	delay := opts.Debounce
	if delay <= 0 {
		delay = plugin.DefaultDebounce
	}

	h := host.New(logger, nil)
	s := &session{
		plugin: plugin.New(h, opts),
		host:   h,
		snap:   snap,
		sheet:  &sheet{},
		timers: timers,
		delay:  delay,
	}

	vis := snap.VisConfig(cfg.Vis)
	if err := s.plugin.Create(s.sheet, vis); err != nil {
		return nil, err
	}
	details := plugin.Details{Source: snap.Source, Reason: "load"}
	if err := s.plugin.UpdateAsync(ctx, snap.Rows, s.sheet, vis, snap.Shape, details, nil); err != nil {
		return nil, fmt.Errorf("failed to push snapshot: %w", err)
	}
	if f := cfg.View.FilterField; f != "" && f != state.FilterAll {
		s.plugin.SetFilterField(f)
	}
	s.plugin.Frame()
	return s, nil
}

// settle fires pending debounced input and runs the deferred frame.
func (s *session) settle() {
	s.timers.Advance(s.delay)
	s.plugin.Frame()
}

func (s *session) Filter(text string) {
	s.plugin.FilterInput(text)
	s.settle()
}

func (s *session) Highlight(text string) {
	s.plugin.HighlightInput(text)
	s.settle()
}

func (s *session) SetFilterField(name string) error {
	for _, t := range s.plugin.View().FilterTargets() {
		if t == name {
			s.plugin.SetFilterField(name)
			s.plugin.Frame()
			return nil
		}
	}
	return fmt.Errorf("unknown field %q", name)
}

func (s *session) SetFilterCaseSensitive(on bool) {
	s.plugin.SetFilterCaseSensitive(on)
	s.plugin.Frame()
}

func (s *session) SetHighlightCaseSensitive(on bool) {
	s.plugin.SetHighlightCaseSensitive(on)
	s.plugin.Frame()
}

func (s *session) ToggleRowNumbers(on bool) {
	s.plugin.ToggleRowNumbers(on)
	s.plugin.Frame()
}

func (s *session) ToggleSparklines(on bool) {
	s.plugin.ToggleSparklines(on)
	s.plugin.Frame()
}

func (s *session) Clear() {
	s.plugin.Clear()
	s.plugin.Frame()
}

// Drill opens the drill menu for field on the displayed line pos and returns
// the request the host recorded.
func (s *session) Drill(pos int, field string) (core.DrillRequest, error) {
	if err := s.plugin.Drill(pos, field, core.PointerEvent{Button: core.PointerPrimary}); err != nil {
		return core.DrillRequest{}, err
	}
	req, _ := s.host.Last()
	return req, nil
}

func (s *session) Document() *render.Document {
	return s.plugin.Document()
}

func (s *session) View() *state.ViewState {
	return s.plugin.View()
}
