package grid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/testutil"
	"github.com/leapstack-labs/loglines/internal/ui/features"
	"github.com/leapstack-labs/loglines/internal/ui/notifier"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func testSnapshot() *host.Snapshot {
	return &host.Snapshot{
		Shape: core.QueryShape{
			Dimensions: []core.Field{{Name: "msg", Label: "Message"}},
			Measures:   []core.Field{{Name: "count", Label: "Count"}},
		},
		Rows: []core.Row{
			{"msg": {Value: "error: disk full"}, "count": {Value: 4.0, Links: []core.Link{{Label: "By host", URL: "/drill/1"}}}},
			{"msg": {Value: "ok"}, "count": {Value: 1.0}},
			{"msg": {Value: "error: timeout"}, "count": {Value: 2.0}},
			{"msg": {Value: "retrying"}, "count": {Value: 1.0}},
			{"msg": {Value: "error: eof"}, "count": {Value: 3.0}},
		},
		Source: "test",
	}
}

type fixture struct {
	*features.Client
	router   chi.Router
	sessions *Sessions
	timers   *schedule.ManualTimers
}

func setupFixture(t *testing.T, snap *host.Snapshot) *fixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	loop := schedule.NewLoop(logger)
	features.RunLoop(t, loop)

	timers := &schedule.ManualTimers{}
	s := NewSessions(features.NewTestSessionStore(), loop, NewDataset(snap), plugin.Options{Timers: timers}, core.DefaultVisConfig(), logger)

	router := chi.NewRouter()
	require.NoError(t, SetupRoutes(router, s, notifier.New(), false, logger))

	return &fixture{Client: features.NewClient(router), router: router, sessions: s, timers: timers}
}

func countLines(body string) int {
	return strings.Count(body, `class="log-line"`)
}

// =============================================================================
// Page Tests
// =============================================================================

func TestGridPage(t *testing.T) {
	f := setupFixture(t, testSnapshot())

	rec := f.Do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Log Lines</title>",
		"data-init",
		"/updates",
		`id="ll-grid"`,
		"error: disk full",
		"5/5 rows",
		`value="msg"`,
		"Show row numbers",
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
	assert.Equal(t, 5, countLines(body))
	require.NotEmpty(t, f.Cookies, "first visit sets the session cookie")
	assert.Equal(t, CookieName, f.Cookies[0].Name)
}

func TestGridPage_ReusesSession(t *testing.T) {
	f := setupFixture(t, testSnapshot())

	f.Do(t, http.MethodGet, "/", nil)
	f.Do(t, http.MethodGet, "/", nil)

	assert.Equal(t, 1, f.sessions.Len())
}

func TestGridPage_WaitingWithoutData(t *testing.T) {
	f := setupFixture(t, nil)

	rec := f.Do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Waiting for data")
}

func TestManifest(t *testing.T) {
	f := setupFixture(t, testSnapshot())

	rec := f.Do(t, http.MethodGet, "/manifest", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var m plugin.Manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, plugin.ID, m.ID)
	assert.Len(t, m.Options, 2)
}

// =============================================================================
// Action Tests - SSE responses patching the grid
// =============================================================================

func TestFilterInput_Debounced(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	rec := f.Do(t, http.MethodPost, "/input/filter", map[string]any{"filter": "error"})
	assert.Equal(t, 5, countLines(rec.Body.String()), "filter waits for typing to pause")
	assert.Equal(t, 1, f.timers.Pending())

	f.timers.Advance(plugin.DefaultDebounce)

	rec = f.Do(t, http.MethodPost, "/scroll", map[string]any{})
	body := rec.Body.String()
	assert.Equal(t, 3, countLines(body))
	assert.Contains(t, body, "3/5 rows")
}

func TestHighlightInput_MarksMatches(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	f.Do(t, http.MethodPost, "/input/highlight", map[string]any{"highlight": "error"})
	f.timers.Advance(plugin.DefaultDebounce)

	// A short viewport makes the content scrollable, which shows the minimap.
	rec := f.Do(t, http.MethodPost, "/scroll", map[string]any{"clientHeight": 40, "minimapHeight": 100})
	body := rec.Body.String()

	assert.Equal(t, 3, strings.Count(body, `<span class="highlight">`))
	assert.Contains(t, body, "3 matches in 3 lines")
	assert.Equal(t, 3, strings.Count(body, `class="ll-marker"`))
}

func TestToggle_RowNumbers(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	rec := f.Do(t, http.MethodPost, "/toggle", map[string]any{"rowNumbers": false, "filterField": "all"})
	assert.NotContains(t, rec.Body.String(), `class="row-number"`)

	rec = f.Do(t, http.MethodPost, "/toggle", map[string]any{"rowNumbers": true, "filterField": "all"})
	assert.Contains(t, rec.Body.String(), `class="row-number"`)
}

func TestClear_CancelsPendingInput(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	f.Do(t, http.MethodPost, "/input/filter", map[string]any{"filter": "error"})
	f.Do(t, http.MethodPost, "/clear", map[string]any{})
	f.timers.Advance(plugin.DefaultDebounce)

	rec := f.Do(t, http.MethodPost, "/scroll", map[string]any{})
	assert.Equal(t, 5, countLines(rec.Body.String()))
}

func TestMinimapDrag(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	geometry := map[string]any{"clientHeight": 40, "minimapHeight": 100, "y": 100}
	rec := f.Do(t, http.MethodPost, "/minimap/down", geometry)
	body := rec.Body.String()
	assert.Contains(t, body, "scrollTop = 60")
	assert.Contains(t, body, `"dragging":true`)

	rec = f.Do(t, http.MethodPost, "/minimap/up", map[string]any{"scrollTop": 60})
	assert.Contains(t, rec.Body.String(), `"dragging":false`)
}

func TestDrill(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	rec := f.Do(t, http.MethodPost, "/drill", map[string]any{"line": 0, "field": "count", "x": 12, "y": 30})
	body := rec.Body.String()
	assert.Contains(t, body, `class="ll-drill open"`)
	assert.Contains(t, body, "By host")
	assert.Contains(t, body, "left:12px;top:30px")
}

func TestDrill_NotDrillable(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	rec := f.Do(t, http.MethodPost, "/drill", map[string]any{"line": 1, "field": "count"})
	body := rec.Body.String()
	assert.NotContains(t, body, "ll-drill open")
	assert.Contains(t, body, "console.error")
}

func TestAction_BadSignals(t *testing.T) {
	f := setupFixture(t, testSnapshot())

	req := httptest.NewRequest(http.MethodPost, "/clear", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "failed to read signals")
	assert.Equal(t, 0, f.sessions.Len())
}

func TestReload_PushesNewDataset(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	f.Do(t, http.MethodGet, "/", nil)

	snap := testSnapshot()
	snap.Rows = snap.Rows[:2]
	f.sessions.data.Set(snap)
	require.NoError(t, f.sessions.Reload(context.Background()))

	rec := f.Do(t, http.MethodPost, "/scroll", map[string]any{})
	assert.Equal(t, 2, countLines(rec.Body.String()))
}

// =============================================================================
// Session Lifetime Tests
// =============================================================================

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func useClock(s *Sessions) *fakeClock {
	c := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s.mu.Lock()
	s.now = c.Now
	s.mu.Unlock()
	return c
}

func newSession(t *testing.T, s *Sessions) *session {
	t.Helper()
	sess, err := s.Resolve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestSessions_CookielessRequestsAreCapped(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	clock := useClock(f.sessions)
	f.sessions.SetLimits(Limits{Max: 3})

	for i := 0; i < 50; i++ {
		clock.Advance(time.Second)
		rec := features.NewClient(f.router).Get(t, "/")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 3, f.sessions.Len())
}

func TestSessions_EvictsLeastRecentlySeen(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	clock := useClock(f.sessions)
	f.sessions.SetLimits(Limits{Max: 2})

	first := features.NewClient(f.router)
	first.Get(t, "/")
	clock.Advance(time.Second)
	second := features.NewClient(f.router)
	second.Get(t, "/")
	clock.Advance(time.Second)

	// Revisiting refreshes the first session, so the second is the oldest.
	first.Get(t, "/")
	clock.Advance(time.Second)
	features.NewClient(f.router).Get(t, "/")
	assert.Equal(t, 2, f.sessions.Len())

	// A known session is not re-issued a cookie; an evicted one would be.
	assert.Empty(t, first.Get(t, "/").Result().Cookies(), "first session survives")
	assert.NotEmpty(t, second.Get(t, "/").Result().Cookies(), "second session was evicted")
}

func TestSessions_SweepExpiresIdle(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	clock := useClock(f.sessions)
	f.sessions.SetLimits(Limits{IdleTTL: time.Minute})

	newSession(t, f.sessions)
	newSession(t, f.sessions)
	require.Equal(t, 2, f.sessions.Len())

	clock.Advance(30 * time.Second)
	assert.Equal(t, 0, f.sessions.Sweep(), "not idle long enough")

	clock.Advance(31 * time.Second)
	assert.Equal(t, 2, f.sessions.Sweep())
	assert.Equal(t, 0, f.sessions.Len())
}

func TestSessions_StreamingSessionIsKept(t *testing.T) {
	f := setupFixture(t, testSnapshot())
	clock := useClock(f.sessions)
	f.sessions.SetLimits(Limits{IdleTTL: time.Minute, Max: 1})

	sess := newSession(t, f.sessions)
	f.sessions.attach(sess)

	clock.Advance(time.Hour)
	assert.Equal(t, 0, f.sessions.Sweep())

	// Over the cap, but the streaming session may not be evicted.
	newSession(t, f.sessions)
	assert.Equal(t, 2, f.sessions.Len())

	f.sessions.detach(sess)
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 2, f.sessions.Sweep())
}
