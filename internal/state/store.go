// Package state holds the mutable view record of one plugin instance.
//
// A ViewState is owned by exactly one composition root and is read by the
// renderer, highlighter and minimap on every render cycle. It is not safe for
// concurrent use; all mutation happens on the UI loop.
package state

import (
	"github.com/leapstack-labs/loglines/internal/transform"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// FilterAll targets every field when filtering.
const FilterAll = "all"

// ViewState is the current dataset, active filters, UI toggles and computed statistics.
type ViewState struct {
	Data  []core.Row
	Shape *core.QueryShape

	FilterField         string
	FilterText          string
	FilterCaseSensitive bool

	HighlightText          string
	HighlightCaseSensitive bool

	ShowRowNumbers      bool
	ShowSparklines      bool
	AllowDimensionDrill bool

	Dragging bool

	Stats map[string]core.MeasureStats

	// Generation increases on every dataset push.
	Generation uint64
}

// New returns a ViewState initialized from the host options.
func New(cfg core.VisConfig) *ViewState {
	vs := &ViewState{FilterField: FilterAll}
	vs.ApplyConfig(cfg)
	return vs
}

// ApplyConfig copies host options, recomputing statistics when the sparkline toggle changes.
func (vs *ViewState) ApplyConfig(cfg core.VisConfig) {
	sparkChanged := vs.ShowSparklines != cfg.ShowMeasureSparklines
	vs.ShowRowNumbers = cfg.ShowRowNumbers
	vs.ShowSparklines = cfg.ShowMeasureSparklines
	vs.AllowDimensionDrill = cfg.AllowDimensionDrill
	if sparkChanged {
		vs.recomputeStats()
	}
}

// VisConfig returns the current toggles as host options.
func (vs *ViewState) VisConfig() core.VisConfig {
	return core.VisConfig{
		ShowRowNumbers:        vs.ShowRowNumbers,
		ShowMeasureSparklines: vs.ShowSparklines,
		AllowDimensionDrill:   vs.AllowDimensionDrill,
	}
}

// SetData replaces the dataset and shape and recomputes statistics in full.
// A filter field that no longer exists falls back to FilterAll.
func (vs *ViewState) SetData(rows []core.Row, shape core.QueryShape) {
	vs.Data = rows
	vs.Shape = &shape
	vs.Generation++
	if vs.FilterField != FilterAll {
		if _, ok := shape.Lookup(vs.FilterField); !ok {
			vs.FilterField = FilterAll
		}
	}
	vs.recomputeStats()
}

// SetShowSparklines toggles sparklines and recomputes statistics in full.
func (vs *ViewState) SetShowSparklines(on bool) {
	vs.ShowSparklines = on
	vs.recomputeStats()
}

// SetFilterField selects the filter target. Unknown names select every field.
func (vs *ViewState) SetFilterField(name string) {
	if name == "" {
		name = FilterAll
	}
	if name != FilterAll && vs.Shape != nil {
		if _, ok := vs.Shape.Lookup(name); !ok {
			name = FilterAll
		}
	}
	vs.FilterField = name
}

// ClearInputs resets filter and highlight text.
func (vs *ViewState) ClearInputs() {
	vs.FilterText = ""
	vs.HighlightText = ""
}

// HasData reports whether a dataset and shape have been pushed.
func (vs *ViewState) HasData() bool {
	return vs.Data != nil && vs.Shape != nil
}

// Fields returns the ordered field list, or nil before the first push.
func (vs *ViewState) Fields() []core.Field {
	if vs.Shape == nil {
		return nil
	}
	return vs.Shape.Fields()
}

// FilterTargets lists the selectable filter targets: FilterAll then every field name.
func (vs *ViewState) FilterTargets() []string {
	targets := []string{FilterAll}
	for _, f := range vs.Fields() {
		targets = append(targets, f.Name)
	}
	return targets
}

// Clone returns a copy sharing the immutable dataset.
func (vs *ViewState) Clone() *ViewState {
	c := *vs
	if vs.Stats != nil {
		c.Stats = make(map[string]core.MeasureStats, len(vs.Stats))
		for k, v := range vs.Stats {
			c.Stats[k] = v
		}
	}
	return &c
}

func (vs *ViewState) recomputeStats() {
	if vs.Shape == nil {
		vs.Stats = nil
		return
	}
	vs.Stats = transform.ComputeStats(vs.Data, vs.Shape.Measures)
}
