package cliconfig

import (
	"os"
	"path/filepath"
)

// Configuration value sources, in merge order.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// DefaultControlPort is the loopback port the control API listens on.
const DefaultControlPort = 9877

// CLIConfig is the merged configuration for the staticmock CLI.
type CLIConfig struct {
	// DBPath is the SQLite database file holding config and mappings.
	DBPath string `yaml:"db_path"`

	// ControlPort is the port for the control REST API.
	ControlPort int `yaml:"control_port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of text, json.
	LogFormat string `yaml:"log_format"`

	// Sources records where each value came from. Not serialized.
	Sources map[string]string `yaml:"-"`
}

// NewDefault returns a CLIConfig populated with defaults.
func NewDefault() *CLIConfig {
	return &CLIConfig{
		DBPath:      defaultDBPath(),
		ControlPort: DefaultControlPort,
		LogLevel:    "info",
		LogFormat:   "text",
		Sources: map[string]string{
			"dbPath":      SourceDefault,
			"controlPort": SourceDefault,
			"logLevel":    SourceDefault,
			"logFormat":   SourceDefault,
		},
	}
}

// defaultDBPath places the database under the user config directory,
// falling back to the working directory when it cannot be determined.
func defaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "staticmock.db"
	}
	return filepath.Join(configDir, GlobalConfigDir, "staticmock.db")
}
