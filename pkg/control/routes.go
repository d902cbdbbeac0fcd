// Route registration for the control API.

package control

import (
	"net/http"
)

// registerRoutes sets up all control endpoints.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Health and metrics
	mux.HandleFunc("GET /health", a.handleHealth)
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}

	// Server lifecycle
	mux.HandleFunc("GET /server/state", a.handleGetState)
	mux.HandleFunc("POST /server/start", a.handleStartServer)
	mux.HandleFunc("POST /server/stop", a.handleStopServer)

	// Server configuration
	mux.HandleFunc("GET /server/config", a.handleGetConfig)
	mux.HandleFunc("PATCH /server/config", a.handleUpdateConfig)

	// Directory mappings
	mux.HandleFunc("GET /mappings", a.handleListMappings)
	mux.HandleFunc("POST /mappings", a.handleCreateMapping)
	mux.HandleFunc("PUT /mappings/{id}", a.handleUpdateMapping)
	mux.HandleFunc("DELETE /mappings/{id}", a.handleDeleteMapping)

	// Filesystem browsing for the mapping picker
	mux.HandleFunc("GET /fs/list", a.handleListDirectory)
	mux.HandleFunc("POST /fs/pick", a.handlePickDirectory)

	// Access log streaming
	mux.HandleFunc("GET /logs/stream", a.handleStreamLogs)
	mux.HandleFunc("GET /logs/ws", a.handleStreamLogsWS)
}
