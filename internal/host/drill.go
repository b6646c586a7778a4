package host

import (
	"log/slog"
	"sync"

	"github.com/leapstack-labs/loglines/pkg/core"
)

// DrillRecorder logs drill requests and keeps the most recent one.
type DrillRecorder struct {
	mu       sync.Mutex
	logger   *slog.Logger
	requests []core.DrillRequest
	notify   func(core.DrillRequest)
}

// NewDrillRecorder creates a recorder. notify, if set, is called for every request.
func NewDrillRecorder(logger *slog.Logger, notify func(core.DrillRequest)) *DrillRecorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DrillRecorder{logger: logger, notify: notify}
}

// OpenDrillMenu records req.
func (d *DrillRecorder) OpenDrillMenu(req core.DrillRequest) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()

	d.logger.Info("drill requested", "field", req.Field, "links", len(req.Links), "x", req.Event.X, "y", req.Event.Y)
	if d.notify != nil {
		d.notify(req)
	}
}

// Last returns the most recent request.
func (d *DrillRecorder) Last() (core.DrillRequest, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		return core.DrillRequest{}, false
	}
	return d.requests[len(d.requests)-1], true
}

// Requests returns every recorded request in order.
func (d *DrillRecorder) Requests() []core.DrillRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.DrillRequest, len(d.requests))
	copy(out, d.requests)
	return out
}

// Host combines the default formatter and a drill recorder into a core.Host.
type Host struct {
	*Formatter
	*DrillRecorder
}

// New returns a Host with the default formatter.
func New(logger *slog.Logger, notify func(core.DrillRequest)) *Host {
	return &Host{Formatter: NewFormatter(), DrillRecorder: NewDrillRecorder(logger, notify)}
}

var _ core.Host = (*Host)(nil)
