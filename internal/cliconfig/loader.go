package cliconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// LocalConfigFileName is the name of the per-directory config file
	LocalConfigFileName = ".staticmockrc.yaml"
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "staticmock"
	// GlobalConfigFileName is the name of the global config file
	GlobalConfigFileName = "config.yaml"
)

// ConfigError describes a problem with a configuration file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// FindLocalConfig searches for .staticmockrc.yaml in the current directory.
// Returns empty string if not found.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cwd, LocalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(configDir, GlobalConfigDir, GlobalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// LoadConfigFile loads a CLIConfig from a YAML file.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	return &cfg, nil
}

// mergeConfig copies non-zero values from overlay onto cfg, recording
// the source of each value.
func mergeConfig(cfg, overlay *CLIConfig, source string) {
	if overlay.DBPath != "" {
		cfg.DBPath = overlay.DBPath
		cfg.Sources["dbPath"] = source
	}
	if overlay.ControlPort != 0 {
		cfg.ControlPort = overlay.ControlPort
		cfg.Sources["controlPort"] = source
	}
	if overlay.LogLevel != "" {
		cfg.LogLevel = overlay.LogLevel
		cfg.Sources["logLevel"] = source
	}
	if overlay.LogFormat != "" {
		cfg.LogFormat = overlay.LogFormat
		cfg.Sources["logFormat"] = source
	}
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: env > local config > global config > defaults. Flags are
// applied by the command layer on top of the result.
func LoadAll() (*CLIConfig, error) {
	cfg := NewDefault()

	if globalPath, err := FindGlobalConfig(); err == nil && globalPath != "" {
		globalCfg, err := LoadConfigFile(globalPath)
		if err != nil {
			return nil, err
		}
		mergeConfig(cfg, globalCfg, SourceGlobal)
	}

	if localPath, err := FindLocalConfig(); err == nil && localPath != "" {
		localCfg, err := LoadConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		mergeConfig(cfg, localCfg, SourceLocal)
	}

	LoadEnvConfig(cfg)

	return cfg, nil
}
