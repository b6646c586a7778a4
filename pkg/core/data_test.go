package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/loglines/pkg/core"
)

func TestField_DisplayLabel(t *testing.T) {
	tests := []struct {
		name  string
		field core.Field
		want  string
	}{
		{"short label wins", core.Field{Name: "n", Label: "Label", ShortLabel: "L"}, "L"},
		{"label", core.Field{Name: "n", Label: "Label"}, "Label"},
		{"name fallback", core.Field{Name: "n"}, "n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.DisplayLabel())
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "disk full", "disk full"},
		{"bytes", []byte("raw"), "raw"},
		{"int", 12, "12"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"stringer", 90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.Stringify(tt.in))
		})
	}
}

func TestCell_DisplayText(t *testing.T) {
	assert.Equal(t, "1,200", core.Cell{Value: 1200, Rendered: "1,200"}.DisplayText())
	assert.Equal(t, "1200", core.Cell{Value: 1200}.DisplayText())
	assert.Equal(t, "", core.Cell{}.DisplayText())
}

func TestQueryShape(t *testing.T) {
	shape := core.QueryShape{
		Dimensions: []core.Field{{Name: "host", IsMeasure: true}},
		Measures:   []core.Field{{Name: "count"}},
	}

	fields := shape.Fields()
	assert.Equal(t, []core.Field{{Name: "host"}, {Name: "count", IsMeasure: true}}, fields)

	f, ok := shape.Lookup("count")
	assert.True(t, ok)
	assert.True(t, f.IsMeasure)

	_, ok = shape.Lookup("missing")
	assert.False(t, ok)

	assert.False(t, shape.Empty())
	assert.True(t, core.QueryShape{}.Empty())
}

func TestMeasureStats_Degenerate(t *testing.T) {
	assert.True(t, core.MeasureStats{Min: 3, Max: 3}.Degenerate())
	assert.False(t, core.MeasureStats{Min: 0, Max: 3}.Degenerate())
}

func TestVisConfig_Drillable(t *testing.T) {
	linked := core.Cell{Value: 4, Links: []core.Link{{Label: "By host", URL: "/drill"}}}
	measure := core.Field{Name: "count", IsMeasure: true}
	dimension := core.Field{Name: "host"}

	tests := []struct {
		name  string
		vis   core.VisConfig
		field core.Field
		cell  core.Cell
		want  bool
	}{
		{"measure with links", core.DefaultVisConfig(), measure, linked, true},
		{"measure without links", core.DefaultVisConfig(), measure, core.Cell{Value: 4}, false},
		{"dimension by default", core.DefaultVisConfig(), dimension, linked, false},
		{"dimension when allowed", core.VisConfig{AllowDimensionDrill: true}, dimension, linked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.vis.Drillable(tt.field, tt.cell))
		})
	}
}
