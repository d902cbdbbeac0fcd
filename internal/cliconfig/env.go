package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvDBPath      = "STATICMOCK_DB_PATH"
	EnvControlPort = "STATICMOCK_CONTROL_PORT"
	EnvLogLevel    = "STATICMOCK_LOG_LEVEL"
	EnvLogFormat   = "STATICMOCK_LOG_FORMAT"
)

// LoadEnvConfig applies environment variable overrides.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
		cfg.Sources["dbPath"] = SourceEnv
	}

	if v := os.Getenv(EnvControlPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.ControlPort = port
			cfg.Sources["controlPort"] = SourceEnv
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}
}
