// Route table construction from a configuration snapshot.

package engine

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/staticmock/staticmock/pkg/config"
)

// buildRouter registers two routes per usable mapping (the virtual path
// root and a catch-all under it), the health route, and the fallback.
// chi's trie gives longest-prefix wins on colliding virtual paths, with
// exact matches beating the catch-all under the same prefix.
//
// Mappings whose local path is missing or not a directory are dropped
// here; a restart picks them up once the directory appears.
func buildRouter(cfg *config.ServerConfig, mappings []*config.DirectoryMapping, log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware(buildCORSPolicy(cfg)))

	r.Get("/health", handleHealth)
	r.Head("/health", handleHealth)

	for _, m := range mappings {
		if !m.Enabled {
			continue
		}
		// chi treats "{", "}" and "*" as pattern syntax and panics on
		// malformed patterns. Rows written before the metacharacter check
		// existed may still carry them.
		if strings.ContainsAny(m.VirtualPath, "{}*") {
			log.Warn("dropping mapping: virtual path contains routing metacharacters",
				"virtual_path", m.VirtualPath, "local_path", m.LocalPath)
			continue
		}
		info, err := os.Stat(m.LocalPath)
		if err != nil || !info.IsDir() {
			log.Warn("dropping mapping: local path is not a directory",
				"virtual_path", m.VirtualPath, "local_path", m.LocalPath)
			continue
		}

		h := newFileHandler(m.LocalPath, log)
		r.Get(m.VirtualPath, h.serveRoot)
		r.Head(m.VirtualPath, h.serveRoot)

		glob := m.VirtualPath + "/*"
		if m.VirtualPath == "/" {
			glob = "/*"
		}
		r.Get(glob, h.ServeHTTP)
		r.Head(glob, h.ServeHTTP)

		log.Debug("route registered", "virtual_path", m.VirtualPath, "local_path", m.LocalPath)
	}

	r.NotFound(handleFallback)
	return r
}

// handleHealth implements GET /health.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleFallback answers anything outside the routing table. The access
// log record is emitted by the middleware wrapping the router.
func handleFallback(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
