package grid

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/ui/notifier"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// CookieName is the name of the session cookie.
const CookieName = "loglines"

const sessionKey = "sid"

// Session limits used when none are set.
const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxSessions = 256
)

// Limits bound how many plugin instances the server keeps. A session with
// no open update stream is idle; idle sessions expire after IdleTTL, and
// past Max the least recently seen idle session is dropped.
type Limits struct {
	IdleTTL time.Duration
	Max     int
}

// Dataset is the snapshot shared by every session.
type Dataset struct {
	mu   sync.RWMutex
	snap *host.Snapshot
}

// NewDataset wraps an initial snapshot, which may be nil.
func NewDataset(snap *host.Snapshot) *Dataset {
	return &Dataset{snap: snap}
}

// Get returns the current snapshot.
func (d *Dataset) Get() *host.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Set replaces the snapshot.
func (d *Dataset) Set(snap *host.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = snap
}

// session is one browser's view: a plugin instance drawing into a page.
// Everything but updates is owned by the UI loop; lastSeen and streams
// are guarded by Sessions.mu.
type session struct {
	id      string
	plugin  *plugin.Plugin
	host    *host.Host
	page    *page
	updates *notifier.Notifier

	lastSeen time.Time
	streams  int
}

// view flushes deferred work and snapshots what the browser should show.
func (s *session) view() GridView {
	s.plugin.Frame()

	doc := s.plugin.Document()
	v := s.plugin.View()
	gv := GridView{
		Header:        doc.Header,
		Placeholder:   doc.Placeholder,
		Minimap:       s.page.minimap,
		Stats:         doc.Stats,
		Matches:       s.plugin.Matches(),
		FilterTargets: v.FilterTargets(),
		FilterField:   v.FilterField,
		Dragging:      v.Dragging,
		ContentHeight: s.page.Metrics().ScrollHeight,
		ScrollTarget:  s.page.takeScroll(),
	}
	gv.Lines = make([]*dom.Node, 0, len(doc.Lines))
	for i := range doc.Lines {
		gv.Lines = append(gv.Lines, doc.Lines[i].Node)
	}
	return gv
}

// signals mirrors the view state into the page's signals.
func (s *session) signals() Signals {
	vs := s.plugin.View()
	return Signals{
		Filter:        vs.FilterText,
		Highlight:     vs.HighlightText,
		FilterField:   vs.FilterField,
		FilterCase:    vs.FilterCaseSensitive,
		HighlightCase: vs.HighlightCaseSensitive,
		RowNumbers:    vs.ShowRowNumbers,
		Sparklines:    vs.ShowSparklines,
		ScrollTop:     s.page.scrollTop,
		ClientHeight:  s.page.clientHeight,
		MinimapHeight: s.page.minimapHeight,
		Dragging:      vs.Dragging,
	}
}

// Sessions maps browser sessions to plugin instances.
type Sessions struct {
	mu     sync.Mutex
	store  sessions.Store
	loop   *schedule.Loop
	data   *Dataset
	opts   plugin.Options
	vis    core.VisConfig
	logger *slog.Logger
	limits Limits
	now    func() time.Time
	byID   map[string]*session
}

// NewSessions creates the session registry. Plugins run on loop.
func NewSessions(store sessions.Store, loop *schedule.Loop, data *Dataset, opts plugin.Options, vis core.VisConfig, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.Poster = loop
	opts.Logger = logger
	return &Sessions{
		store:  store,
		loop:   loop,
		data:   data,
		opts:   opts,
		vis:    vis,
		logger: logger,
		limits: Limits{IdleTTL: DefaultIdleTTL, Max: DefaultMaxSessions},
		now:    time.Now,
		byID:   make(map[string]*session),
	}
}

// SetLimits replaces the session limits. Zero fields keep their defaults.
func (s *Sessions) SetLimits(l Limits) {
	if l.IdleTTL <= 0 {
		l.IdleTTL = DefaultIdleTTL
	}
	if l.Max <= 0 {
		l.Max = DefaultMaxSessions
	}
	s.mu.Lock()
	s.limits = l
	s.mu.Unlock()
}

// Resolve returns the caller's session, creating it and setting the cookie
// when needed. It must run before anything is written to w.
func (s *Sessions) Resolve(w http.ResponseWriter, r *http.Request) (*session, error) {
	cookie, err := s.store.Get(r, CookieName)
	if err != nil {
		// A cookie signed with another secret; start over.
		s.logger.Debug("discarding unreadable session", "error", err)
	}

	if id, ok := cookie.Values[sessionKey].(string); ok {
		if sess := s.lookup(id); sess != nil {
			return sess, nil
		}
	}

	id := uuid.NewString()
	cookie.Values[sessionKey] = id
	if err := cookie.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s.create(r.Context(), id)
}

func (s *Sessions) lookup(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.byID[id]
	if sess != nil {
		sess.lastSeen = s.now()
	}
	return sess
}

// attach marks an update stream open on sess.
func (s *Sessions) attach(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.streams++
	sess.lastSeen = s.now()
}

// detach marks an update stream closed; the idle clock starts now.
func (s *Sessions) detach(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.streams--
	sess.lastSeen = s.now()
}

// Sweep drops idle sessions older than the TTL and returns how many went.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Sessions) sweepLocked() int {
	cutoff := s.now().Add(-s.limits.IdleTTL)
	n := 0
	for id, sess := range s.byID {
		if sess.streams == 0 && sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Debug("expired idle sessions", "count", n, "live", len(s.byID))
	}
	return n
}

// makeRoomLocked evicts least recently seen idle sessions until one more fits.
// Sessions with an open stream are never evicted, so Max can be exceeded.
func (s *Sessions) makeRoomLocked() {
	s.sweepLocked()
	for len(s.byID) >= s.limits.Max {
		var oldest *session
		for _, sess := range s.byID {
			if sess.streams == 0 && (oldest == nil || sess.lastSeen.Before(oldest.lastSeen)) {
				oldest = sess
			}
		}
		if oldest == nil {
			s.logger.Warn("session limit reached with every session streaming", "live", len(s.byID))
			return
		}
		delete(s.byID, oldest.id)
		s.logger.Debug("evicted session", "session", oldest.id[:8])
	}
}

// RunSweeper sweeps idle sessions every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) create(ctx context.Context, id string) (*session, error) {
	updates := notifier.New()
	h := host.New(s.logger, nil)
	sess := &session{
		id:      id,
		host:    h,
		page:    newPage(func() { updates.Broadcast(notifier.ReasonFrame) }),
		updates: updates,
	}

	err := s.loop.Do(ctx, func() error {
		sess.plugin = plugin.New(h, s.opts)
		if err := sess.plugin.Create(sess.page, s.vis); err != nil {
			return err
		}
		return s.push(ctx, sess, "session")
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.makeRoomLocked()
	sess.lastSeen = s.now()
	s.byID[id] = sess
	s.mu.Unlock()
	s.logger.Debug("session created", "session", id[:8], "instance", sess.plugin.ID())
	return sess, nil
}

// push sends the current dataset to a session. Runs on the loop.
func (s *Sessions) push(ctx context.Context, sess *session, reason string) error {
	snap := s.data.Get()
	if snap == nil {
		return nil
	}
	err := sess.plugin.UpdateAsync(ctx, snap.Rows, sess.page, snap.VisConfig(s.vis), snap.Shape,
		plugin.Details{Source: snap.Source, Reason: reason}, nil)
	if err != nil {
		return err
	}
	sess.plugin.Frame()
	return nil
}

// Reload pushes the current dataset to every session.
func (s *Sessions) Reload(ctx context.Context) error {
	s.mu.Lock()
	all := make([]*session, 0, len(s.byID))
	for _, sess := range s.byID {
		all = append(all, sess)
	}
	s.mu.Unlock()

	return s.loop.Do(ctx, func() error {
		var firstErr error
		for _, sess := range all {
			if err := s.push(ctx, sess, "reload"); err != nil {
				s.logger.Error("reload failed", "session", sess.id[:8], "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	})
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
