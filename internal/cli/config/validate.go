package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/loglines/internal/cli/output"
)

// ErrNoData is returned when a command needs a snapshot and none is configured.
var ErrNoData = errors.New("no data file configured")

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !output.Valid(c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(output.Names(), ", "))
	}
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (expected one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.View.DebounceMS < 0 {
		return fmt.Errorf("view.debounce_ms must not be negative, got %d", c.View.DebounceMS)
	}
	if c.View.MinThumbHeight < 0 {
		return fmt.Errorf("view.min_thumb_height must not be negative, got %g", c.View.MinThumbHeight)
	}
	if c.View.TUIMinThumbHeight < 0 {
		return fmt.Errorf("view.tui_min_thumb_height must not be negative, got %g", c.View.TUIMinThumbHeight)
	}
	if c.View.MarkerHeight < 0 {
		return fmt.Errorf("view.marker_height must not be negative, got %g", c.View.MarkerHeight)
	}
	if c.UI.SessionTTLMinutes < 0 {
		return fmt.Errorf("ui.session_ttl_minutes must not be negative, got %d", c.UI.SessionTTLMinutes)
	}
	if c.UI.MaxSessions < 0 {
		return fmt.Errorf("ui.max_sessions must not be negative, got %d", c.UI.MaxSessions)
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port must be between 0 and 65535, got %d", c.UI.Port)
	}
	return nil
}

// ValidateData checks that a snapshot file is configured and exists.
// Only commands that read data call it, so help works without one.
func (c *Config) ValidateData() error {
	if c.Data == "" {
		return fmt.Errorf("%w\nHint: pass --data or set data in loglines.yaml", ErrNoData)
	}
	if c.Data == "-" {
		return nil
	}
	if _, err := os.Stat(c.Data); os.IsNotExist(err) {
		return fmt.Errorf("data file does not exist: %s", c.Data)
	}
	return nil
}

func validLogLevel(level string) bool {
	if level == "" {
		return true
	}
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
