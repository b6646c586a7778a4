// Package config provides configuration management for the loglines CLI.
//
// Values come from defaults, a loglines.yaml file, LOGLINES_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/loglines/pkg/core"
)

// VisConfig is an alias for the host display options.
// This allows CLI code to use config.VisConfig without importing pkg/core.
type VisConfig = core.VisConfig

// ViewConfig tunes the rendering engine.
type ViewConfig struct {
	Separator      string  `koanf:"separator"`
	FilterField    string  `koanf:"filter_field"`
	DebounceMS     int     `koanf:"debounce_ms"`
	MinThumbHeight float64 `koanf:"min_thumb_height"`
	MarkerHeight   float64 `koanf:"marker_height"`

	// The terminal measures the minimap in text rows, not pixels.
	TUIMinThumbHeight float64 `koanf:"tui_min_thumb_height"`
}

// Debounce returns the input debounce delay.
func (v ViewConfig) Debounce() time.Duration {
	return time.Duration(v.DebounceMS) * time.Millisecond
}

// UIConfig holds configuration for the web server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`

	// Browser sessions idle longer than this are dropped.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`
	MaxSessions       int `koanf:"max_sessions"`
}

// SessionTTL returns the idle session lifetime.
func (u UIConfig) SessionTTL() time.Duration {
	return time.Duration(u.SessionTTLMinutes) * time.Minute
}

// Config holds all CLI configuration options.
type Config struct {
	Data         string     `koanf:"data"`
	Verbose      bool       `koanf:"verbose"`
	LogLevel     string     `koanf:"log_level"`
	LogFile      string     `koanf:"log_file"`
	OutputFormat string     `koanf:"output"`
	Vis          VisConfig  `koanf:"vis"`
	View         ViewConfig `koanf:"view"`
	UI           UIConfig   `koanf:"ui"`

	// BaseDir is the directory relative paths were resolved against.
	BaseDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultLogLevel       = "info"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSeparator      = " | "
	DefaultFilterField    = "all"
	DefaultDebounceMS     = 200
	DefaultMinThumbHeight = 20
	DefaultMarkerHeight   = 2
	DefaultTUIMinThumb    = 1
	DefaultPort           = 8765
	DefaultSessionTTL     = 30
	DefaultMaxSessions    = 256
	DefaultSessionSecret  = "loglines-dev-secret-change-in-production" //nolint:gosec
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Vis:          core.DefaultVisConfig(),
		View: ViewConfig{
			Separator:      DefaultSeparator,
			FilterField:    DefaultFilterField,
			DebounceMS:     DefaultDebounceMS,
			MinThumbHeight: DefaultMinThumbHeight,
			MarkerHeight:   DefaultMarkerHeight,

			TUIMinThumbHeight: DefaultTUIMinThumb,
		},
		UI: UIConfig{
			Port:          DefaultPort,
			AutoOpen:      true,
			Watch:         true,
			SessionSecret: DefaultSessionSecret,

			SessionTTLMinutes: DefaultSessionTTL,
			MaxSessions:       DefaultMaxSessions,
		},
	}
}
