// Package config provides configuration types, defaults, and persistence
// for rollcall.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/tracing"
)

// Config holds all configuration options for rollcall.
type Config struct {
	// ServerURL is the registration backend base URL.
	ServerURL string `mapstructure:"server_url"`

	UI      UIConfig       `mapstructure:"ui"`
	Theme   ThemeConfig    `mapstructure:"theme"`
	Drafts  DraftsConfig   `mapstructure:"drafts"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default), "light", or "auto"
	MouseEnabled  bool   `mapstructure:"mouse_enabled"`
}

// ThemeConfig holds theme customization options. Colors are hex strings;
// empty values keep the built-in adaptive palette.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	Mode string `mapstructure:"mode"`

	Highlight string `mapstructure:"highlight"`
	Subtle    string `mapstructure:"subtle"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// DraftsConfig controls local draft persistence.
type DraftsConfig struct {
	// Enabled controls whether flow progress is saved locally.
	Enabled bool `mapstructure:"enabled"`

	// Path is the sqlite database location.
	// Default: ~/.config/rollcall/drafts.db
	Path string `mapstructure:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		UI: UIConfig{
			ShowStatusBar: true,
			MarkdownStyle: "dark",
			MouseEnabled:  true,
		},
		Drafts: DraftsConfig{
			Enabled: true,
			Path:    DefaultDraftsPath(),
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// DefaultConfigPath returns ~/.config/rollcall/config.yaml, or "" when the
// home directory is unavailable.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rollcall", "config.yaml")
}

// DefaultDraftsPath returns ~/.config/rollcall/drafts.db, or "" when the
// home directory is unavailable.
func DefaultDraftsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rollcall", "drafts.db")
}

// DefaultTracesFilePath returns ~/.config/rollcall/traces/traces.jsonl, or
// "" when the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rollcall", "traces", "traces.jsonl")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Rollcall Configuration

# Registration backend base URL
server_url: http://localhost:8080

# UI settings
ui:
  show_status_bar: true   # Show step progress at the bottom
  # markdown_style: dark  # Program description rendering: "dark" (default), "light", or "auto"
  mouse_enabled: true     # Click to focus form fields

# Theme settings
# theme:
#   mode: dark            # Force "light" or "dark"; empty uses terminal detection
#   highlight: "#7D56F4"
#   error: "#FF5F87"

# Local draft persistence; lets an interrupted registration resume later
drafts:
  enabled: true
  # path: ~/.config/rollcall/drafts.db

# Distributed tracing of backend calls (off by default)
# tracing:
#   enabled: true
#   exporter: file
#   file_path: ~/.config/rollcall/traces/traces.jsonl
#
# Example: send traces to a collector via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
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
