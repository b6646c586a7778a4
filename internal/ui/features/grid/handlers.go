package grid

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/ui/notifier"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// PageTitle is the document title of the grid page.
const PageTitle = "Log Lines"

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	sessions *Sessions
	notifier *notifier.Notifier
	isDev    bool
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance. notify fires when the
// dataset is replaced.
func NewHandlers(s *Sessions, notify *notifier.Notifier, isDev bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		sessions: s,
		notifier: notify,
		isDev:    isDev,
		logger:   logger,
	}
}

// GridPage renders the full page with the session's current view.
func (h *Handlers) GridPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Resolve(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var (
		view GridView
		sig  Signals
	)
	err = h.sessions.loop.Do(r.Context(), func() error {
		view = sess.view()
		sig = sess.signals()
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if err := Page(PageTitle, h.isDev, plugin.Descriptor(), sig, view).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Manifest serves the plugin descriptor as JSON.
func (h *Handlers) Manifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(plugin.Descriptor()); err != nil {
		h.logger.Error("failed to encode manifest", "error", err)
	}
}

// Updates is the long-lived SSE endpoint. It re-patches the grid whenever
// the session re-renders on its own (debounced input) or the dataset changes.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	// Resolve before NewSSE: a new session needs its cookie header.
	sess, err := h.sessions.Resolve(w, r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	h.sessions.attach(sess)
	defer h.sessions.detach(sess)

	local := sess.updates.Subscribe()
	defer sess.updates.Unsubscribe(local)
	global := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(global)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-local:
		case u := <-global:
			h.logger.Debug("pushing update", "session", sess.id[:8], "reason", u.Reason, "seq", u.Seq)
		}

		var view GridView
		err := h.sessions.loop.Do(ctx, func() error {
			view = sess.view()
			return nil
		})
		if err != nil {
			return
		}
		if err := h.patch(sse, view); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
}

// action is one user interaction, run on the UI loop. It may return an
// extra component to patch after the grid.
type action func(sess *session, sig Signals) (templ.Component, error)

func (h *Handlers) handle(name string, fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Read signals BEFORE creating SSE (SSE consumes the request body)
		var sig Signals
		if err := datastar.ReadSignals(r, &sig); err != nil {
			sse := datastar.NewSSE(w, r)
			_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
			return
		}

		sess, err := h.sessions.Resolve(w, r)
		if err != nil {
			sse := datastar.NewSSE(w, r)
			_ = sse.ConsoleError(err)
			return
		}

		var (
			view  GridView
			extra templ.Component
		)
		err = h.sessions.loop.Do(r.Context(), func() error {
			if sess.page.observe(sig) {
				sess.plugin.Resized()
			}
			c, err := fn(sess, sig)
			if err != nil {
				return err
			}
			extra = c
			view = sess.view()
			return nil
		})

		sse := datastar.NewSSE(w, r)
		if err != nil {
			h.logger.Debug("action failed", "action", name, "session", sess.id[:8], "error", err)
			_ = sse.ConsoleError(err)
			return
		}
		if err := h.patch(sse, view); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
		if extra != nil {
			if err := sse.PatchElementTempl(extra); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// patch sends the grid, any pending scroll and the drag state.
func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, view GridView) error {
	if err := sse.PatchElementTempl(Grid(view)); err != nil {
		return err
	}
	if view.ScrollTarget != nil {
		script := fmt.Sprintf("document.getElementById('%s').scrollTop = %.0f", BodyID, *view.ScrollTarget)
		if err := sse.ExecuteScript(script); err != nil {
			return err
		}
	}
	return sse.MarshalAndPatchSignals(map[string]any{"dragging": view.Dragging})
}

// FilterInput handles keystrokes in the filter box.
func (h *Handlers) FilterInput() http.HandlerFunc {
	return h.handle("filter", func(sess *session, sig Signals) (templ.Component, error) {
		sess.plugin.FilterInput(sig.Filter)
		return nil, nil
	})
}

// HighlightInput handles keystrokes in the highlight box.
func (h *Handlers) HighlightInput() http.HandlerFunc {
	return h.handle("highlight", func(sess *session, sig Signals) (templ.Component, error) {
		sess.plugin.HighlightInput(sig.Highlight)
		return nil, nil
	})
}

// Toggle applies every control whose signal differs from the view state.
func (h *Handlers) Toggle() http.HandlerFunc {
	return h.handle("toggle", func(sess *session, sig Signals) (templ.Component, error) {
		p := sess.plugin
		vs := p.View()
		if sig.FilterField != "" && sig.FilterField != vs.FilterField {
			p.SetFilterField(sig.FilterField)
		}
		if sig.FilterCase != vs.FilterCaseSensitive {
			p.SetFilterCaseSensitive(sig.FilterCase)
		}
		if sig.HighlightCase != vs.HighlightCaseSensitive {
			p.SetHighlightCaseSensitive(sig.HighlightCase)
		}
		if sig.RowNumbers != vs.ShowRowNumbers {
			p.ToggleRowNumbers(sig.RowNumbers)
		}
		if sig.Sparklines != vs.ShowSparklines {
			p.ToggleSparklines(sig.Sparklines)
		}
		return nil, nil
	})
}

// Clear resets both text inputs.
func (h *Handlers) Clear() http.HandlerFunc {
	return h.handle("clear", func(sess *session, _ Signals) (templ.Component, error) {
		sess.plugin.Clear()
		return nil, nil
	})
}

// Scroll syncs the minimap with the reported scroll position.
func (h *Handlers) Scroll() http.HandlerFunc {
	return h.handle("scroll", func(sess *session, _ Signals) (templ.Component, error) {
		sess.plugin.Scrolled()
		return nil, nil
	})
}

// MinimapDown starts a minimap drag.
func (h *Handlers) MinimapDown() http.HandlerFunc {
	return h.handle("minimap-down", func(sess *session, sig Signals) (templ.Component, error) {
		sess.plugin.MinimapPointerDown(sig.Y)
		return nil, nil
	})
}

// MinimapMove continues a minimap drag.
func (h *Handlers) MinimapMove() http.HandlerFunc {
	return h.handle("minimap-move", func(sess *session, sig Signals) (templ.Component, error) {
		sess.plugin.MinimapPointerMove(sig.Y)
		return nil, nil
	})
}

// MinimapUp ends a minimap drag.
func (h *Handlers) MinimapUp() http.HandlerFunc {
	return h.handle("minimap-up", func(sess *session, _ Signals) (templ.Component, error) {
		sess.plugin.MinimapPointerUp()
		return nil, nil
	})
}

// Drill opens the drill menu for a clicked cell.
func (h *Handlers) Drill() http.HandlerFunc {
	return h.handle("drill", func(sess *session, sig Signals) (templ.Component, error) {
		ev := core.PointerEvent{X: sig.X, Y: sig.Y, Button: core.PointerPrimary}
		if err := sess.plugin.Drill(sig.Line, sig.Field, ev); err != nil {
			return nil, err
		}
		req, ok := sess.host.Last()
		if !ok {
			return nil, nil
		}
		return DrillMenu(req), nil
	})
}
