// Package core defines the shared language of the loglines engine.
//
// This package contains:
//   - Data model received from the host (Field, Cell, Row, Link, QueryShape)
//   - Derived statistics (MeasureStats)
//   - Visualization options (VisConfig)
//   - Host collaborator contracts (Formatter, DrillOpener, Host)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
