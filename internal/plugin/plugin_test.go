package plugin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/testutil"
	"github.com/leapstack-labs/loglines/pkg/core"
)

type fakeHost struct {
	drills []core.DrillRequest
}

func (h *fakeHost) FormatCellAsHTML(cell core.Cell, _ core.Field) (string, error) {
	return cell.DisplayText(), nil
}

func (h *fakeHost) FormatCellAsText(cell core.Cell) (string, error) {
	return cell.DisplayText(), nil
}

func (h *fakeHost) OpenDrillMenu(req core.DrillRequest) {
	h.drills = append(h.drills, req)
}

const lineHeight = 10.0

type fakeContainer struct {
	anchors   map[string]bool
	mounts    int
	doc       *render.Document
	scrollTop float64
	client    float64
	track     float64
	views     []MinimapView
	chrome    *Manifest
	panicOn   bool
}

func newContainer() *fakeContainer {
	return &fakeContainer{
		anchors: map[string]bool{AnchorHeader: true, AnchorBody: true, AnchorMinimap: true},
		client:  20,
		track:   100,
	}
}

func (c *fakeContainer) Has(anchor string) bool { return c.anchors[anchor] }

func (c *fakeContainer) Mount(doc *render.Document) {
	if c.panicOn {
		panic("mount exploded")
	}
	c.mounts++
	c.doc = doc
}

func (c *fakeContainer) Metrics() minimap.Metrics {
	lines := 0
	if c.doc != nil {
		lines = len(c.doc.Lines)
	}
	return minimap.Metrics{
		ScrollTop:     c.scrollTop,
		ScrollHeight:  float64(lines) * lineHeight,
		ClientHeight:  c.client,
		MinimapHeight: c.track,
	}
}

func (c *fakeContainer) LineOffset(pos int) float64 { return float64(pos) * lineHeight }

func (c *fakeContainer) ScrollTo(top float64) { c.scrollTop = top }

func (c *fakeContainer) ShowMinimap(view MinimapView) { c.views = append(c.views, view) }

func (c *fakeContainer) BuildChrome(m Manifest) { c.chrome = &m }

func (c *fakeContainer) lastView() MinimapView {
	if len(c.views) == 0 {
		return MinimapView{}
	}
	return c.views[len(c.views)-1]
}

func logShape() core.QueryShape {
	return core.QueryShape{
		Dimensions: []core.Field{{Name: "msg", Label: "Message"}},
		Measures:   []core.Field{{Name: "count", Label: "Count"}},
	}
}

func logRows() []core.Row {
	return []core.Row{
		{"msg": {Value: "error: disk full"}, "count": {Value: 4, Links: []core.Link{{Label: "By host", URL: "/drill/1"}}}},
		{"msg": {Value: "ok"}, "count": {Value: 1}},
		{"msg": {Value: "error: timeout"}, "count": {Value: 2}},
		{"msg": {Value: "ok again"}, "count": {Value: 3}},
		{"msg": {Value: "warn: slow"}, "count": {Value: 5}},
	}
}

type harness struct {
	p      *Plugin
	host   *fakeHost
	c      *fakeContainer
	timers *schedule.ManualTimers
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{host: &fakeHost{}, c: newContainer(), timers: &schedule.ManualTimers{}}
	h.p = New(h.host, Options{
		Debounce: 100 * time.Millisecond,
		Timers:   h.timers,
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, h.p.Create(h.c, core.DefaultVisConfig()))
	h.p.Frame()
	return h
}

func (h *harness) push(t *testing.T) {
	t.Helper()
	calls := 0
	err := h.p.UpdateAsync(context.Background(), logRows(), h.c, core.DefaultVisConfig(), logShape(), Details{Source: "test"}, func() { calls++ })
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	h.p.Frame()
}

func TestDescriptor(t *testing.T) {
	m := Descriptor()
	assert.Equal(t, ID, m.ID)
	require.Len(t, m.Options, 2)
	assert.Equal(t, "show_row_numbers", m.Options[0].Key)
	assert.Equal(t, true, m.Options[0].Default)
	assert.Equal(t, "show_measure_sparklines", m.Options[1].Key)
	assert.Equal(t, false, m.Options[1].Default)
}

func TestCreate_BuildsChromeAndWaits(t *testing.T) {
	h := newHarness(t)

	require.NotNil(t, h.c.chrome)
	assert.Equal(t, ID, h.c.chrome.ID)
	require.NotNil(t, h.c.doc)
	assert.True(t, h.c.doc.Waiting)
	assert.NotEmpty(t, h.p.ID())
}

func TestCreate_MissingAnchor(t *testing.T) {
	c := newContainer()
	delete(c.anchors, AnchorMinimap)

	p := New(&fakeHost{}, Options{Logger: testutil.NewTestLogger(t)})
	err := p.Create(c, core.DefaultVisConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAnchor)
	assert.Contains(t, err.Error(), AnchorMinimap)
	assert.Zero(t, c.mounts)
}

func TestUpdateAsync_DoneExactlyOnce(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	broken := newContainer()
	delete(broken.anchors, AnchorBody)

	exploding := newContainer()
	exploding.panicOn = true

	tests := []struct {
		name      string
		ctx       context.Context
		rows      []core.Row
		container func(h *harness) Container
		wantErr   error
	}{
		{
			name:      "success",
			ctx:       context.Background(),
			rows:      logRows(),
			container: func(h *harness) Container { return h.c },
		},
		{
			name:      "missing anchor",
			ctx:       context.Background(),
			rows:      logRows(),
			container: func(*harness) Container { return broken },
			wantErr:   ErrMissingAnchor,
		},
		{
			name:      "no data",
			ctx:       context.Background(),
			container: func(h *harness) Container { return h.c },
			wantErr:   ErrNoData,
		},
		{
			name:      "cancelled",
			ctx:       cancelled,
			rows:      logRows(),
			container: func(h *harness) Container { return h.c },
			wantErr:   context.Canceled,
		},
		{
			name:      "panicking container",
			ctx:       context.Background(),
			rows:      logRows(),
			container: func(*harness) Container { return exploding },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			calls := 0
			err := h.p.UpdateAsync(tt.ctx, tt.rows, tt.container(h), core.DefaultVisConfig(), logShape(), Details{}, func() { calls++ })

			assert.Equal(t, 1, calls)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.name == "panicking container":
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateAsync_NilDone(t *testing.T) {
	h := newHarness(t)
	assert.NotPanics(t, func() {
		_ = h.p.UpdateAsync(context.Background(), logRows(), h.c, core.DefaultVisConfig(), logShape(), Details{}, nil)
	})
}

func TestRender_DefersHighlightToFrame(t *testing.T) {
	h := newHarness(t)
	h.p.vs.HighlightText = "error"

	err := h.p.UpdateAsync(context.Background(), logRows(), h.c, core.DefaultVisConfig(), logShape(), Details{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, h.p.PendingFrames())
	assert.False(t, h.p.Highlight(), "highlight must wait for layout")
	assert.Empty(t, h.p.Matches().Lines)

	h.p.Frame()
	assert.Zero(t, h.p.PendingFrames())
	assert.Equal(t, []int{0, 2}, h.p.Matches().Lines)
	assert.Equal(t, 2, h.p.Matches().Matches)
}

func TestRender_DropsStaleFrames(t *testing.T) {
	h := newHarness(t)
	h.push(t)

	h.p.Render()
	h.p.Render()
	assert.Equal(t, 2, h.p.PendingFrames())

	h.p.Frame()
	assert.Zero(t, h.p.PendingFrames())
	assert.True(t, h.p.Highlight())
}

func TestFilterInput_Debounced(t *testing.T) {
	h := newHarness(t)
	h.push(t)
	require.Len(t, h.p.Document().Lines, 5)

	h.p.FilterInput("err")
	h.timers.Advance(50 * time.Millisecond)
	h.p.FilterInput("error")
	h.timers.Advance(50 * time.Millisecond)
	assert.Len(t, h.p.Document().Lines, 5)

	h.timers.Advance(50 * time.Millisecond)
	h.p.Frame()
	require.Len(t, h.p.Document().Lines, 2)
	assert.Equal(t, 0, h.p.Document().Lines[0].Index)
	assert.Equal(t, 2, h.p.Document().Lines[1].Index)
	assert.Equal(t, "error", h.p.View().FilterText)
}

func TestClear_CancelsPendingInput(t *testing.T) {
	h := newHarness(t)
	h.push(t)
	h.p.HighlightInput("ok")
	h.timers.Advance(200 * time.Millisecond)
	h.p.Frame()
	require.NotEmpty(t, h.p.Matches().Lines)

	h.p.FilterInput("warn")
	h.p.Clear()
	h.timers.Advance(time.Second)
	h.p.Frame()

	v := h.p.View()
	assert.Empty(t, v.FilterText)
	assert.Empty(t, v.HighlightText)
	assert.Len(t, h.p.Document().Lines, 5)
	assert.Empty(t, h.p.Matches().Lines)
}

func TestHighlightInput_PlacesMarkers(t *testing.T) {
	h := newHarness(t)
	h.push(t)
	require.True(t, h.p.Thumb().Visible)

	h.p.HighlightInput("ERROR")
	h.timers.Advance(100 * time.Millisecond)

	markers := h.p.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, 0, markers[0].Line)
	assert.InDelta(t, 0, markers[0].Top, 1e-9)
	assert.Equal(t, 2, markers[1].Line)
	assert.InDelta(t, 40, markers[1].Top, 1e-9)
	assert.Equal(t, markers, h.c.lastView().Markers)

	h.p.SetHighlightCaseSensitive(true)
	assert.Empty(t, h.p.Markers())
}

func TestToggles_Rerender(t *testing.T) {
	h := newHarness(t)
	h.push(t)

	h.p.ToggleRowNumbers(false)
	h.p.Frame()
	assert.Equal(t, "error: disk full | 4", h.p.Document().Lines[0].PlainText)

	h.p.ToggleSparklines(true)
	h.p.Frame()
	assert.True(t, h.p.View().ShowSparklines)
	assert.NotEmpty(t, h.p.View().Stats)

	h.p.SetFilterField("msg")
	h.p.SetFilterCaseSensitive(true)
	h.p.Frame()
	v := h.p.View()
	assert.Equal(t, "msg", v.FilterField)
	assert.True(t, v.FilterCaseSensitive)
}

func TestDrill(t *testing.T) {
	h := newHarness(t)
	h.push(t)

	ev := core.PointerEvent{X: 3, Y: 4, Button: core.PointerPrimary}
	require.NoError(t, h.p.Drill(0, "count", ev))
	require.Len(t, h.host.drills, 1)
	assert.Equal(t, "count", h.host.drills[0].Field)
	assert.Equal(t, ev, h.host.drills[0].Event)

	err := h.p.Drill(0, "msg", ev)
	assert.True(t, errors.Is(err, render.ErrNoDrill))
	assert.Len(t, h.host.drills, 1)
}

func TestMinimapDrag(t *testing.T) {
	h := newHarness(t)
	h.push(t)

	require.True(t, h.p.MinimapPointerDown(50))
	assert.True(t, h.p.Dragging())
	assert.True(t, h.c.lastView().Thumb.Dragging)

	h.p.MinimapPointerMove(1e6)
	assert.InDelta(t, 30, h.c.scrollTop, 1e-9)

	h.p.Scrolled()
	h.p.MinimapPointerUp()
	assert.False(t, h.p.Dragging())
	assert.False(t, h.c.lastView().Thumb.Dragging)

	h.c.scrollTop = 0
	h.p.Scrolled()
	assert.InDelta(t, 0, h.p.Thumb().Top, 1e-9)
}

func TestResized_RefreshesAfterFrame(t *testing.T) {
	h := newHarness(t)
	h.push(t)
	require.True(t, h.p.Thumb().Visible)

	h.c.client = 1000
	h.p.Resized()
	assert.True(t, h.p.Thumb().Visible)

	h.p.Frame()
	assert.False(t, h.p.Thumb().Visible)
	assert.False(t, h.c.lastView().Visible)
}
