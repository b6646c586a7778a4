package minimap

import "log/slog"

// State is the controller state.
type State int

// Controller states.
const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Scroller is the scrolling content the minimap mirrors.
type Scroller interface {
	Metrics() Metrics
	ScrollTo(top float64)
}

// Controller drives the thumb from scroll metrics and pointer input.
type Controller struct {
	scroller Scroller
	window   Window
	minThumb float64
	logger   *slog.Logger
	onDrag   func(bool)

	state     State
	thumb     Thumb
	listening bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDragHook calls fn whenever dragging starts or stops.
func WithDragHook(fn func(dragging bool)) Option {
	return func(c *Controller) {
		c.onDrag = fn
	}
}

// NewController creates an idle controller.
func NewController(scroller Scroller, window Window, minThumb float64, opts ...Option) *Controller {
	if minThumb <= 0 {
		minThumb = DefaultMinThumbHeight
	}
	c := &Controller{
		scroller: scroller,
		window:   window,
		minThumb: minThumb,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Thumb returns the last computed thumb.
func (c *Controller) Thumb() Thumb {
	return c.thumb
}

// Visible reports whether the thumb is shown.
func (c *Controller) Visible() bool {
	return c.thumb.Visible
}

// Refresh recomputes the thumb from the current metrics.
func (c *Controller) Refresh() Thumb {
	c.thumb = ComputeThumb(c.scroller.Metrics(), c.minThumb)
	c.thumb.Dragging = c.state == Dragging
	return c.thumb
}

// PointerDown starts a drag at track position y. It reports whether a drag started.
func (c *Controller) PointerDown(y float64) bool {
	if c.state == Dragging {
		return false
	}
	m := c.scroller.Metrics()
	if !m.Scrollable() {
		return false
	}

	c.setState(Dragging)
	thumb := ComputeThumb(m, c.minThumb)
	c.scroller.ScrollTo(ScrollTopForPointer(y, m, thumb.Height))
	c.Refresh()

	if c.window != nil && c.window.Listen(c) {
		c.listening = true
	}
	c.logger.Debug("minimap drag started", "y", y)
	return true
}

// PointerMove scrolls to follow the pointer while dragging.
// Only the thumb top is updated.
func (c *Controller) PointerMove(y float64) {
	if c.state != Dragging {
		return
	}
	m := c.scroller.Metrics()
	target := ScrollTopForPointer(y, m, c.thumb.Height)
	c.scroller.ScrollTo(target)
	c.thumb.Top = ThumbTop(target, m, c.thumb.Height)
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	if c.state != Dragging {
		return
	}
	c.setState(Idle)
	c.thumb.Dragging = false
	if c.window != nil && c.listening {
		c.window.Unlisten(c)
	}
	c.listening = false
	c.logger.Debug("minimap drag ended")
}

// OnScroll syncs the thumb after a native scroll. Ignored while dragging.
func (c *Controller) OnScroll() {
	if c.state == Dragging {
		return
	}
	c.Refresh()
}

func (c *Controller) setState(s State) {
	c.state = s
	if c.onDrag != nil {
		c.onDrag(s == Dragging)
	}
}
