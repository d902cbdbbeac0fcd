package control

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/staticmock/staticmock/pkg/command"
	"github.com/staticmock/staticmock/pkg/config"
	"github.com/staticmock/staticmock/pkg/engine"
	"github.com/staticmock/staticmock/pkg/httputil"
	"github.com/staticmock/staticmock/pkg/store"
)

// writeCommandError maps command-surface errors onto HTTP responses.
// The full error is logged; the client sees the category and message.
func (a *API) writeCommandError(w http.ResponseWriter, operation string, err error) {
	a.log.Error("operation failed", "operation", operation, "error", err)

	var validationErr *config.ValidationError
	var bindErr *engine.BindError
	switch {
	case errors.As(err, &validationErr):
		httputil.WriteBadRequest(w, "validation", validationErr.Error())
	case errors.Is(err, command.ErrNotADirectory):
		httputil.WriteBadRequest(w, "not_a_directory", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, command.ErrNotFound):
		httputil.WriteNotFound(w, "not_found", err.Error())
	case errors.Is(err, store.ErrConflict):
		httputil.WriteConflict(w, "conflict", err.Error())
	case errors.Is(err, engine.ErrAlreadyRunning):
		httputil.WriteConflict(w, "already_running", "server is already running")
	case errors.As(err, &bindErr):
		httputil.WriteError(w, http.StatusBadGateway, "bind_failed", bindErr.Error())
	default:
		httputil.WriteInternalError(w, "storage", "operation failed")
	}
}

// pathID parses the {id} path value as a mapping ID.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]any{
		"status":  "ok",
		"version": a.version,
		"uptime":  a.Uptime().String(),
	})
}

// handleGetState handles GET /server/state.
func (a *API) handleGetState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, a.service.GetState())
}

// handleStartServer handles POST /server/start.
func (a *API) handleStartServer(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.StartServer(r.Context())
	if err != nil {
		a.writeCommandError(w, "start server", err)
		return
	}
	httputil.WriteOK(w, state)
}

// handleStopServer handles POST /server/stop.
func (a *API) handleStopServer(w http.ResponseWriter, r *http.Request) {
	state, err := a.service.StopServer()
	if err != nil {
		a.writeCommandError(w, "stop server", err)
		return
	}
	httputil.WriteOK(w, state)
}

// handleGetConfig handles GET /server/config.
func (a *API) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.service.GetConfig(r.Context())
	if err != nil {
		a.writeCommandError(w, "get config", err)
		return
	}
	httputil.WriteOK(w, cfg)
}

// handleUpdateConfig handles PATCH /server/config.
func (a *API) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch config.ServerConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", "invalid JSON in request body")
		return
	}
	cfg, err := a.service.UpdateConfig(r.Context(), &patch)
	if err != nil {
		a.writeCommandError(w, "update config", err)
		return
	}
	httputil.WriteOK(w, cfg)
}

// handleListMappings handles GET /mappings.
func (a *API) handleListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := a.service.GetMappings(r.Context())
	if err != nil {
		a.writeCommandError(w, "list mappings", err)
		return
	}
	httputil.WriteOK(w, map[string]any{
		"mappings": mappings,
		"count":    len(mappings),
	})
}

type createMappingRequest struct {
	VirtualPath string `json:"virtual_path"`
	LocalPath   string `json:"local_path"`
}

// handleCreateMapping handles POST /mappings.
func (a *API) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	var req createMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", "invalid JSON in request body")
		return
	}
	mapping, err := a.service.CreateMapping(r.Context(), req.VirtualPath, req.LocalPath)
	if err != nil {
		a.writeCommandError(w, "create mapping", err)
		return
	}
	httputil.WriteCreated(w, mapping)
}

// handleUpdateMapping handles PUT /mappings/{id}.
func (a *API) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "validation", "mapping ID must be an integer")
		return
	}
	var patch config.MappingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", "invalid JSON in request body")
		return
	}
	mapping, err := a.service.UpdateMapping(r.Context(), id, &patch)
	if err != nil {
		a.writeCommandError(w, "update mapping", err)
		return
	}
	httputil.WriteOK(w, mapping)
}

// handleDeleteMapping handles DELETE /mappings/{id}.
func (a *API) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "validation", "mapping ID must be an integer")
		return
	}
	if err := a.service.DeleteMapping(r.Context(), id); err != nil {
		a.writeCommandError(w, "delete mapping", err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleListDirectory handles GET /fs/list?path=.
func (a *API) handleListDirectory(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	entries, err := a.service.ListDirectory(path)
	if err != nil {
		a.writeCommandError(w, "list directory", err)
		return
	}
	httputil.WriteOK(w, map[string]any{
		"path":    path,
		"entries": entries,
	})
}

// handlePickDirectory handles POST /fs/pick.
func (a *API) handlePickDirectory(w http.ResponseWriter, r *http.Request) {
	path, err := a.service.SelectDirectory(r.Context())
	if err != nil {
		a.writeCommandError(w, "pick directory", err)
		return
	}
	httputil.WriteOK(w, map[string]any{
		"path":      path,
		"cancelled": path == "",
	})
}
