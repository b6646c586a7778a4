package plugin

import "github.com/leapstack-labs/loglines/pkg/core"

// Plugin identity as registered with the host.
const (
	ID    = "loglines"
	Label = "Log Lines"
)

// Manifest describes the plugin to the host's registration and settings UI.
type Manifest struct {
	ID      string              `json:"id"`
	Label   string              `json:"label"`
	Options []core.OptionSchema `json:"options"`
}

// Descriptor returns the plugin manifest.
func Descriptor() Manifest {
	defaults := core.DefaultVisConfig()
	return Manifest{
		ID:    ID,
		Label: Label,
		Options: []core.OptionSchema{
			{
				Key:     "show_row_numbers",
				Label:   "Show row numbers",
				Type:    "boolean",
				Default: defaults.ShowRowNumbers,
				Section: "Display",
			},
			{
				Key:     "show_measure_sparklines",
				Label:   "Show measure sparklines",
				Type:    "boolean",
				Default: defaults.ShowMeasureSparklines,
				Section: "Display",
			},
		},
	}
}
