package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "LOGLINES_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configNames = []string{"loglines.yaml", "loglines.yml"}

// flagKeys maps flag names onto nested config keys. Other flags map by
// replacing dashes with underscores.
var flagKeys = map[string]string{
	"log-level":        "log_level",
	"log-file":         "log_file",
	"row-numbers":      "vis.show_row_numbers",
	"sparklines":       "vis.show_measure_sparklines",
	"dimension-drill":  "vis.allow_dimension_drill",
	"separator":        "view.separator",
	"filter-field":     "view.filter_field",
	"debounce":         "view.debounce_ms",
	"min-thumb-height": "view.min_thumb_height",
	"marker-height":    "view.marker_height",
	"tui-min-thumb":    "view.tui_min_thumb_height",
	"port":             "ui.port",
	"watch":            "ui.watch",
	"no-browser":       "",
	"session-secret":   "ui.session_secret",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// configIn returns the config file in dir, if any.
func configIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configIn(dir); found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == "-" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey transforms LOGLINES_VIEW__DEBOUNCE_MS into view.debounce_ms.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// flagKey returns the config key a flag sets, or "" to ignore it.
func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose":                     false,
		"log_level":                   def.LogLevel,
		"output":                      def.OutputFormat,
		"vis.show_row_numbers":        def.Vis.ShowRowNumbers,
		"vis.show_measure_sparklines": def.Vis.ShowMeasureSparklines,
		"vis.allow_dimension_drill":   def.Vis.AllowDimensionDrill,
		"view.separator":              def.View.Separator,
		"view.filter_field":           def.View.FilterField,
		"view.debounce_ms":            def.View.DebounceMS,
		"view.min_thumb_height":       def.View.MinThumbHeight,
		"view.marker_height":          def.View.MarkerHeight,
		"view.tui_min_thumb_height":   def.View.TUIMinThumbHeight,
		"ui.port":                     def.UI.Port,
		"ui.auto_open":                def.UI.AutoOpen,
		"ui.watch":                    def.UI.Watch,
		"ui.session_secret":           def.UI.SessionSecret,
		"ui.session_ttl_minutes":      def.UI.SessionTTLMinutes,
		"ui.max_sessions":             def.UI.MaxSessions,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigUpward(cwd)
	}
	baseDir := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (LOGLINES_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Paths given on the command line are relative to the working directory.
	var flagData, flagLogFile string
	if flags != nil {
		if flags.Changed("data") {
			if v, _ := flags.GetString("data"); v != "" && v != "-" {
				flagData, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("log-file") {
			if v, _ := flags.GetString("log-file"); v != "" {
				flagLogFile, _ = filepath.Abs(v)
			}
		}
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the config file's directory
	cfg.BaseDir = baseDir
	if flagData != "" {
		cfg.Data = flagData
	} else {
		cfg.Data = resolvePathRelativeTo(cfg.Data, baseDir)
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	} else {
		cfg.LogFile = resolvePathRelativeTo(cfg.LogFile, baseDir)
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
