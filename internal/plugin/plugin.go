// Package plugin is the composition root of the log-lines engine.
//
// A Plugin owns the view state and every engine component. All of its methods
// must be called from the UI loop; timers post their work back onto that loop
// through the configured schedule.Poster.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/loglines/internal/highlight"
	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// Defaults for Options.
const (
	DefaultDebounce     = 200 * time.Millisecond
	DefaultMarkerHeight = 2
)

// Options configures a Plugin.
type Options struct {
	Separator      string
	Debounce       time.Duration
	MinThumbHeight float64
	MarkerHeight   float64

	// Poster runs debounced work on the UI loop. Defaults to schedule.Inline.
	Poster schedule.Poster
	Timers schedule.Timers
	Logger *slog.Logger
}

// Details describes the origin of an update.
type Details struct {
	Source string
	Reason string
}

// Plugin wires input, rendering, highlighting and the minimap together.
type Plugin struct {
	id     string
	host   core.Host
	opts   Options
	logger *slog.Logger

	vs          *state.ViewState
	renderer    *render.Renderer
	highlighter *highlight.Highlighter
	frames      schedule.FrameQueue
	filterIn    *schedule.Debouncer
	highlightIn *schedule.Debouncer
	hub         *minimap.PointerHub
	mm          *minimap.Controller

	container Container
	doc       render.Document
	renderGen uint64
	rendering bool
	result    highlight.Result
	markers   []highlight.Marker
}

// New creates a plugin bound to host.
func New(host core.Host, opts Options) *Plugin {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinThumbHeight <= 0 {
		opts.MinThumbHeight = minimap.DefaultMinThumbHeight
	}
	if opts.MarkerHeight <= 0 {
		opts.MarkerHeight = DefaultMarkerHeight
	}
	if opts.Poster == nil {
		opts.Poster = schedule.Inline{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	id := uuid.NewString()
	logger := opts.Logger.With("plugin", ID, "instance", id[:8])

	p := &Plugin{
		id:          id,
		host:        host,
		opts:        opts,
		logger:      logger,
		vs:          state.New(core.DefaultVisConfig()),
		highlighter: highlight.New(logger),
		hub:         &minimap.PointerHub{},
		filterIn:    schedule.NewDebouncer(opts.Debounce, opts.Poster, opts.Timers),
		highlightIn: schedule.NewDebouncer(opts.Debounce, opts.Poster, opts.Timers),
	}
	renderOpts := []render.Option{render.WithLogger(logger)}
	if opts.Separator != "" {
		renderOpts = append(renderOpts, render.WithSeparator(opts.Separator))
	}
	p.renderer = render.New(host, renderOpts...)
	p.mm = minimap.NewController(scroller{p}, p.hub, opts.MinThumbHeight,
		minimap.WithLogger(logger),
		minimap.WithDragHook(func(dragging bool) { p.vs.Dragging = dragging }),
	)
	return p
}

// ID returns the instance id.
func (p *Plugin) ID() string {
	return p.id
}

// Create attaches the plugin to container and applies the initial options.
func (p *Plugin) Create(container Container, cfg core.VisConfig) error {
	if err := p.attach(container); err != nil {
		p.logger.Error("create aborted", "error", err)
		return err
	}
	p.vs.ApplyConfig(cfg)
	if cb, ok := container.(ChromeBuilder); ok {
		cb.BuildChrome(Descriptor())
	}
	p.logger.Debug("plugin created")
	p.Render()
	return nil
}

// UpdateAsync pushes a dataset through the pipeline. done is called exactly
// once, on every path.
func (p *Plugin) UpdateAsync(ctx context.Context, rows []core.Row, container Container, cfg core.VisConfig, shape core.QueryShape, details Details, done func()) (err error) {
	var once sync.Once
	finish := func() {
		once.Do(func() {
			if done != nil {
				done()
			}
		})
	}
	defer finish()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update panicked: %v", r)
			p.logger.Error("update failed", "error", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update cancelled: %w", err)
	}
	if container != nil && container != p.container {
		if err := p.attach(container); err != nil {
			p.logger.Error("update aborted", "error", err)
			return err
		}
	}
	if p.container == nil {
		err := fmt.Errorf("%w: no container", ErrMissingAnchor)
		p.logger.Error("update aborted", "error", err)
		return err
	}
	if missing := missingAnchors(p.container); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", ErrMissingAnchor, strings.Join(missing, ", "))
		p.logger.Error("update aborted", "error", err)
		return err
	}

	p.vs.ApplyConfig(cfg)
	if rows == nil {
		p.Render()
		return ErrNoData
	}
	p.vs.SetData(rows, shape)
	p.logger.Debug("data pushed",
		"rows", len(rows),
		"fields", len(shape.Fields()),
		"generation", p.vs.Generation,
		"source", details.Source,
		"reason", details.Reason,
	)
	p.Render()
	return nil
}

func (p *Plugin) attach(container Container) error {
	if container == nil {
		return fmt.Errorf("%w: no container", ErrMissingAnchor)
	}
	if missing := missingAnchors(container); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingAnchor, strings.Join(missing, ", "))
	}
	if p.mm.State() == minimap.Dragging {
		p.mm.PointerUp()
	}
	p.container = container
	return nil
}

// Render rebuilds the document, mounts it and defers post-layout work to the next frame.
func (p *Plugin) Render() {
	if p.container == nil {
		return
	}
	p.renderGen++
	gen := p.renderGen
	p.rendering = true

	p.doc = p.renderer.Render(p.vs)
	p.result = highlight.Result{}
	p.markers = nil
	p.container.Mount(&p.doc)

	p.frames.Request(gen, func() { p.afterLayout(gen) })
}

// Frame runs the work deferred to after the latest layout pass.
// Surfaces call it once they have laid out the mounted document.
func (p *Plugin) Frame() {
	ran, dropped := p.frames.Flush(p.renderGen)
	if dropped > 0 {
		p.logger.Debug("dropped stale frames", "ran", ran, "dropped", dropped)
	}
}

func (p *Plugin) afterLayout(gen uint64) {
	if gen != p.renderGen {
		return
	}
	p.rendering = false
	p.mm.Refresh()
	p.Highlight()
}

// Highlight reapplies the highlight term to every line and repositions markers.
// It reports false when refused because a render is still waiting for layout.
func (p *Plugin) Highlight() bool {
	if p.container == nil {
		return false
	}
	if p.rendering {
		p.logger.Debug("highlight refused, render in flight", "render", p.renderGen)
		return false
	}
	p.result = p.highlighter.ApplyAll(&p.doc, p.vs.HighlightText, p.vs.HighlightCaseSensitive)
	p.container.Mount(&p.doc)
	p.placeMarkers()
	return true
}

func (p *Plugin) placeMarkers() {
	m := p.container.Metrics()
	p.markers = highlight.PlaceMarkers(p.result.Lines, highlight.Layout{
		MinimapVisible: p.mm.Visible(),
		ScrollHeight:   m.ScrollHeight,
		MinimapHeight:  m.MinimapHeight,
		MarkerHeight:   p.opts.MarkerHeight,
		Offset:         p.container.LineOffset,
	})
	p.showMinimap()
}

func (p *Plugin) showMinimap() {
	p.container.ShowMinimap(MinimapView{
		Visible: p.mm.Visible(),
		Thumb:   p.mm.Thumb(),
		Markers: p.markers,
	})
}
