// Package host is the in-process stand-in for the dashboard host: it loads
// query-result snapshots, formats cells and records drill requests.
package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/loglines/pkg/core"
)

// ErrSnapshot reports a snapshot that cannot be decoded.
var ErrSnapshot = errors.New("invalid snapshot")

// Format is the encoding of a snapshot file.
type Format string

// Snapshot formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the snapshot encodings Load understands.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML}
}

// FormatFromPath picks the format from the file extension. Unknown
// extensions are read as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Snapshot is one query response as pushed by the host.
type Snapshot struct {
	Shape   core.QueryShape
	Rows    []core.Row
	Options Options
	Source  string
}

// Options are the display options a snapshot may carry. Unset options keep
// the caller's configuration.
type Options struct {
	ShowRowNumbers        *bool `json:"show_row_numbers,omitempty" yaml:"show_row_numbers,omitempty"`
	ShowMeasureSparklines *bool `json:"show_measure_sparklines,omitempty" yaml:"show_measure_sparklines,omitempty"`
	AllowDimensionDrill   *bool `json:"allow_dimension_drill,omitempty" yaml:"allow_dimension_drill,omitempty"`
}

// Fields returns the ordered field list.
func (s *Snapshot) Fields() []core.Field {
	return s.Shape.Fields()
}

// VisConfig returns the snapshot's options merged over base.
func (s *Snapshot) VisConfig(base core.VisConfig) core.VisConfig {
	cfg := base
	if s.Options.ShowRowNumbers != nil {
		cfg.ShowRowNumbers = *s.Options.ShowRowNumbers
	}
	if s.Options.ShowMeasureSparklines != nil {
		cfg.ShowMeasureSparklines = *s.Options.ShowMeasureSparklines
	}
	if s.Options.AllowDimensionDrill != nil {
		cfg.AllowDimensionDrill = *s.Options.AllowDimensionDrill
	}
	return cfg
}

// wire layout of a snapshot file
type rawSnapshot struct {
	Fields core.QueryShape  `json:"fields" yaml:"fields"`
	Rows   []map[string]any `json:"rows" yaml:"rows"`
	Config Options          `json:"config" yaml:"config"`
}

// Load reads a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	snap, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	snap.Source = path
	return snap, nil
}

// Decode reads a snapshot in the given format.
func Decode(r io.Reader, format Format) (*Snapshot, error) {
	var raw rawSnapshot
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
		}
	}

	if raw.Fields.Empty() && len(raw.Rows) > 0 {
		return nil, fmt.Errorf("%w: rows without fields", ErrSnapshot)
	}
	if err := checkFieldNames(raw.Fields); err != nil {
		return nil, err
	}

	rows := make([]core.Row, 0, len(raw.Rows))
	for i, r := range raw.Rows {
		row, err := decodeRow(r)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrSnapshot, i, err)
		}
		rows = append(rows, row)
	}

	return &Snapshot{Shape: raw.Fields, Rows: rows, Options: raw.Config}, nil
}

func checkFieldNames(shape core.QueryShape) error {
	seen := make(map[string]bool)
	for _, f := range shape.Fields() {
		if f.Name == "" {
			return fmt.Errorf("%w: field without name", ErrSnapshot)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrSnapshot, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// decodeRow accepts either a bare scalar or a {value, rendered, links} object per field.
func decodeRow(raw map[string]any) (core.Row, error) {
	row := make(core.Row, len(raw))
	for name, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok || !isCellObject(obj) {
			row[name] = core.Cell{Value: v}
			continue
		}
		cell, err := decodeCell(obj)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		row[name] = cell
	}
	return row, nil
}

func isCellObject(obj map[string]any) bool {
	if _, ok := obj["value"]; !ok {
		return false
	}
	for k := range obj {
		switch k {
		case "value", "rendered", "links":
		default:
			return false
		}
	}
	return true
}

// decodeCell round-trips the generic map through JSON into core.Cell.
func decodeCell(obj map[string]any) (core.Cell, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return core.Cell{}, err
	}
	var cell core.Cell
	if err := json.Unmarshal(data, &cell); err != nil {
		return core.Cell{}, err
	}
	return cell, nil
}
