package config

import (
	"fmt"
	"time"
)

// Defaults for the persisted server configuration.
const (
	DefaultPort       = 9876
	DefaultCORSMaxAge = 86400
)

// CORSMode selects how the CORS policy is derived at server start.
type CORSMode string

// CORS modes.
const (
	// CORSModeSimple allows everything: wildcard origin, methods and headers.
	CORSModeSimple CORSMode = "simple"

	// CORSModeAdvanced derives the policy from the configured lists.
	CORSModeAdvanced CORSMode = "advanced"
)

// ServerConfig is the persisted server configuration (single row, id 1).
type ServerConfig struct {
	// Port is the TCP port to bind on 127.0.0.1. Stored values are
	// 1..65535; 0 may be passed to the supervisor at start time to ask
	// the OS for a free port.
	Port int `json:"port"`

	// CORSMode selects simple (wildcard) or advanced (list-driven) CORS.
	CORSMode CORSMode `json:"cors_mode"`

	// CORSOrigins, CORSMethods and CORSHeaders feed the advanced mode.
	// nil means unset; a list containing "*" means wildcard.
	CORSOrigins []string `json:"cors_origins,omitempty"`
	CORSMethods []string `json:"cors_methods,omitempty"`
	CORSHeaders []string `json:"cors_headers,omitempty"`

	// CORSMaxAge is the preflight cache lifetime in seconds.
	CORSMaxAge int `json:"cors_max_age"`

	// ShowDirectoryListing is persisted but inert: directory requests
	// return 404 regardless in v1.
	ShowDirectoryListing bool `json:"show_directory_listing"`

	// UpdatedAt is stamped on every write.
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultServerConfig returns the configuration inserted on first read.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       DefaultPort,
		CORSMode:   CORSModeSimple,
		CORSMaxAge: DefaultCORSMaxAge,
	}
}

// ServerConfigPatch is a partial update of ServerConfig. nil fields
// preserve the current value.
type ServerConfigPatch struct {
	Port                 *int      `json:"port,omitempty"`
	CORSMode             *CORSMode `json:"cors_mode,omitempty"`
	CORSOrigins          *[]string `json:"cors_origins,omitempty"`
	CORSMethods          *[]string `json:"cors_methods,omitempty"`
	CORSHeaders          *[]string `json:"cors_headers,omitempty"`
	CORSMaxAge           *int      `json:"cors_max_age,omitempty"`
	ShowDirectoryListing *bool     `json:"show_directory_listing,omitempty"`
}

// Validate checks the patch fields that are present.
func (p *ServerConfigPatch) Validate() error {
	if p.Port != nil && (*p.Port < 1 || *p.Port > 65535) {
		return &ValidationError{Field: "port", Reason: fmt.Sprintf("must be in 1..65535, got %d", *p.Port)}
	}
	if p.CORSMode != nil && *p.CORSMode != CORSModeSimple && *p.CORSMode != CORSModeAdvanced {
		return &ValidationError{Field: "cors_mode", Reason: fmt.Sprintf("unknown mode %q", *p.CORSMode)}
	}
	if p.CORSMaxAge != nil && *p.CORSMaxAge < 0 {
		return &ValidationError{Field: "cors_max_age", Reason: "must not be negative"}
	}
	return nil
}

// Apply returns a copy of c with the present patch fields overwritten.
func (p *ServerConfigPatch) Apply(c *ServerConfig) *ServerConfig {
	out := *c
	if p.Port != nil {
		out.Port = *p.Port
	}
	if p.CORSMode != nil {
		out.CORSMode = *p.CORSMode
	}
	if p.CORSOrigins != nil {
		out.CORSOrigins = *p.CORSOrigins
	}
	if p.CORSMethods != nil {
		out.CORSMethods = *p.CORSMethods
	}
	if p.CORSHeaders != nil {
		out.CORSHeaders = *p.CORSHeaders
	}
	if p.CORSMaxAge != nil {
		out.CORSMaxAge = *p.CORSMaxAge
	}
	if p.ShowDirectoryListing != nil {
		out.ShowDirectoryListing = *p.ShowDirectoryListing
	}
	return &out
}

// ServerStatus is the lifecycle state of the supervisor.
type ServerStatus string

// Server statuses.
const (
	StatusStopped ServerStatus = "stopped"
	StatusRunning ServerStatus = "running"
)

// ServerState is the derived, non-persisted server state reported to the
// embedder.
type ServerState struct {
	Status ServerStatus `json:"status"`

	// Port is the actually bound port, which may differ from the
	// configured one when 0 (OS-assigned) was requested.
	Port int `json:"port"`

	// URL is http://127.0.0.1:<port>; empty when stopped.
	URL string `json:"url,omitempty"`
}
