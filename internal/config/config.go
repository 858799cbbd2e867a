// Package config provides configuration types, defaults and loading for mdlive.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/ui/styles"
)

// Config holds all configuration options for mdlive.
type Config struct {
	Decorate DecorateConfig `mapstructure:"decorate"`
	Render   RenderConfig   `mapstructure:"render"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Theme    ThemeConfig    `mapstructure:"theme"`
}

// DecorateConfig controls what the live preview substitutes.
type DecorateConfig struct {
	DiagramLanguages  []string `mapstructure:"diagram_languages"` // fenced code info strings rendered as diagrams
	Bullet            string   `mapstructure:"bullet"`            // glyph for "-" and "*" list markers
	CheckboxChecked   string   `mapstructure:"checkbox_checked"`
	CheckboxUnchecked string   `mapstructure:"checkbox_unchecked"`
}

// RenderConfig controls reading mode.
type RenderConfig struct {
	Style string `mapstructure:"style"` // glamour style: "dark" (default), "light", "notty", "auto"
	Width int    `mapstructure:"width"` // word wrap width, 0 = terminal width
}

// EditorConfig holds editor surface options.
type EditorConfig struct {
	AutoReload     bool          `mapstructure:"auto_reload"`     // reload when the file changes on disk
	ReloadDebounce time.Duration `mapstructure:"reload_debounce"` // coalesce bursts of file events
	LineNumbers    bool          `mapstructure:"line_numbers"`
	Highlight      bool          `mapstructure:"highlight"` // syntax highlight fenced code
}

// CacheConfig controls the math and diagram render caches.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	// Path enables logging to this file. Empty disables logging unless
	// --debug is passed.
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/mdlive/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	// Valid values: "default", "nord", "high-contrast"
	Preset string `mapstructure:"preset"`

	// Colors overrides individual color tokens. Supports both nested YAML
	// and quoted dot notation:
	//   colors:
	//     widget:
	//       math: "#FF0000"
	//     "status.error": "#FF5555"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// StyleTheme converts the config into the form styles.ApplyTheme takes.
func (t ThemeConfig) StyleTheme() styles.ThemeConfig {
	return styles.ThemeConfig{Preset: t.Preset, Colors: t.FlattenedColors()}
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// DefaultConfigDir returns ~/.config/mdlive, or "" if the home directory is
// unavailable.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mdlive")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mdlive")
}

// DefaultConfigPath returns the user config file path.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Decorate: DecorateConfig{
			DiagramLanguages:  []string{"mermaid"},
			Bullet:            "•",
			CheckboxChecked:   "☑",
			CheckboxUnchecked: "☐",
		},
		Render: RenderConfig{
			Style: "dark",
			Width: 0,
		},
		Editor: EditorConfig{
			AutoReload:     true,
			ReloadDebounce: 100 * time.Millisecond,
			LineNumbers:    false,
			Highlight:      true,
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level: "debug",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// NewViper returns a viper instance pointed at the config file. An explicit
// path wins; otherwise .mdlive/config.yaml in the working directory, then the
// user config. A missing file is not an error.
func NewViper(cfgFile string) *viper.Viper {
	// "::" keeps dotted color tokens like "text.primary" intact.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigType("yaml")
	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(filepath.Join(".mdlive", "config.yaml")):
		v.SetConfigFile(filepath.Join(".mdlive", "config.yaml"))
	default:
		if dir := DefaultConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
	}
	v.SetEnvPrefix("MDLIVE")
	return v
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads the config file behind v, layers it over Defaults and
// validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file, using defaults")
	} else {
		log.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed())
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = DefaultTracesFilePath()
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateDecorate(cfg.Decorate); err != nil {
		return err
	}
	if err := ValidateRender(cfg.Render); err != nil {
		return err
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Editor.ReloadDebounce < 0 {
		return fmt.Errorf("editor.reload_debounce must not be negative, got %s", cfg.Editor.ReloadDebounce)
	}
	if err := ValidateLog(cfg.Log); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	return nil
}

// ValidateDecorate checks decoration glyphs and diagram languages.
func ValidateDecorate(d DecorateConfig) error {
	for i, lang := range d.DiagramLanguages {
		if lang == "" {
			return fmt.Errorf("decorate.diagram_languages[%d] must not be empty", i)
		}
	}
	if d.Bullet == "" {
		return fmt.Errorf("decorate.bullet must not be empty")
	}
	if d.CheckboxChecked == "" || d.CheckboxUnchecked == "" {
		return fmt.Errorf("decorate.checkbox_checked and decorate.checkbox_unchecked must not be empty")
	}
	return nil
}

// ValidateRender checks reading mode options.
func ValidateRender(r RenderConfig) error {
	switch r.Style {
	case "", "dark", "light", "notty", "auto", "dracula", "pink", "ascii", "tokyo-night":
	default:
		return fmt.Errorf("render.style must be a glamour style name, got %q", r.Style)
	}
	if r.Width < 0 {
		return fmt.Errorf("render.width must not be negative, got %d", r.Width)
	}
	return nil
}

// ValidateLog checks the log level.
func ValidateLog(l LogConfig) error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", l.Level)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateTheme checks the preset name. Color tokens are checked when the
// theme is applied.
func ValidateTheme(t ThemeConfig) error {
	if t.Preset == "" || t.Preset == "default" {
		return nil
	}
	if _, ok := styles.Presets[t.Preset]; !ok {
		return fmt.Errorf("theme.preset %q is not a known preset (have %s)", t.Preset, strings.Join(styles.PresetNames(), ", "))
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# mdlive configuration

# Live preview decorations
decorate:
  # Fenced code blocks in these languages render as diagrams
  diagram_languages:
    - mermaid
  bullet: "•"               # Shown in place of "-" and "*" list markers
  checkbox_checked: "☑"
  checkbox_unchecked: "☐"

# Reading mode (tab in the editor, 'mdlive render' on the command line)
render:
  style: dark   # glamour style: dark (default), light, notty, auto, dracula, tokyo-night
  width: 0      # wrap width, 0 = terminal width

# Editor settings
editor:
  auto_reload: true         # Reload when the file changes on disk
  reload_debounce: 100ms
  line_numbers: false
  highlight: true           # Syntax highlight fenced code

# Rendered math and diagram cache
cache:
  ttl: 10m

# Debug log (also enabled with --debug)
# log:
#   path: /tmp/mdlive.log
#   level: debug            # debug, info, warn, error

# Theme configuration
theme:
  # preset: nord
  #
  # Available presets:
  #   default        - Default mdlive theme
  #   nord           - Arctic, north-bluish palette
  #   high-contrast  - High contrast for accessibility
  #
  # Override specific colors (works with or without preset):
  # colors:
  #   widget.math: "#C678DD"
  #   status.error: "#FF0000"

# Tracing of parse and decoration passes
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/mdlive/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
