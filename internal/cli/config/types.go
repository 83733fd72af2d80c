// Package config provides configuration management for the runlens CLI.
//
// Values are layered from defaults, a runlens.yaml file, RUNLENS_ environment
// variables and explicitly set command-line flags, in increasing priority.
package config

import (
	"time"

	"github.com/leapstack-labs/runlens/internal/report"
)

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int           `koanf:"port"`
	AutoOpen      bool          `koanf:"auto_open"`
	Watch         bool          `koanf:"watch"`
	PageSize      int           `koanf:"page_size"`
	SessionSecret string        `koanf:"session_secret"`
	ReportTTL     time.Duration `koanf:"report_ttl"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:      DefaultPort,
		AutoOpen:  true,
		Watch:     true,
		PageSize:  DefaultPageSize,
		ReportTTL: report.DefaultTTL,
	}
}

// FetchConfig selects a remote origin to read documents and files from
// instead of the local storage directory.
type FetchConfig struct {
	Origin  string        `koanf:"origin"`
	Timeout time.Duration `koanf:"timeout"`
}

// Remote reports whether an origin is configured.
func (f *FetchConfig) Remote() bool {
	return f != nil && f.Origin != ""
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	if ui.PageSize == 0 {
		ui.PageSize = DefaultPageSize
	}
	if ui.ReportTTL == 0 {
		ui.ReportTTL = report.DefaultTTL
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string       `koanf:"-"`
	StorageDir   string       `koanf:"storage_dir"`
	Pattern      string       `koanf:"pattern"`
	ViewConfig   string       `koanf:"view_config"`
	StatePath    string       `koanf:"state_path"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	UI           *UIConfig    `koanf:"ui"`
	Fetch        *FetchConfig `koanf:"fetch"`
}

// Default configuration values.
const (
	DefaultStorageDir = "logs"
	DefaultViewConfig = "runlens.view.yaml"
	DefaultStateFile  = ".runlens/index.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort       = 8765
	DefaultPageSize   = 10
)

// Output modes accepted by the output key.
const (
	OutputAuto     = "auto"
	OutputText     = "text"
	OutputMarkdown = "markdown"
	OutputJSON     = "json"
)
