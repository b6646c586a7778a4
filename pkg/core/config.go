package core

// VisConfig holds the options the host passes with every update.
type VisConfig struct {
	ShowRowNumbers        bool `json:"show_row_numbers" yaml:"show_row_numbers" koanf:"show_row_numbers"`
	ShowMeasureSparklines bool `json:"show_measure_sparklines" yaml:"show_measure_sparklines" koanf:"show_measure_sparklines"`

	// AllowDimensionDrill enables drill binding on dimension cells.
	// Off by default: only measure cells are drillable.
	AllowDimensionDrill bool `json:"allow_dimension_drill" yaml:"allow_dimension_drill" koanf:"allow_dimension_drill"`
}

// DefaultVisConfig returns the host defaults.
func DefaultVisConfig() VisConfig {
	return VisConfig{
		ShowRowNumbers:        true,
		ShowMeasureSparklines: false,
	}
}

// Drillable reports whether a cell of the given field may be bound to the drill menu.
func (c VisConfig) Drillable(f Field, cell Cell) bool {
	if !cell.HasLinks() {
		return false
	}
	return f.IsMeasure || c.AllowDimensionDrill
}

// OptionSchema describes one configurable option exposed to the host's settings UI.
type OptionSchema struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Default any    `json:"default"`
	Section string `json:"section,omitempty"`
}
