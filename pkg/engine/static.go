// Static file serving for matched routes.

package engine

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-chi/chi/v5"
)

const fallbackContentType = "application/octet-stream"

// fileHandler serves files under one mapping's local directory.
type fileHandler struct {
	root string
	log  *slog.Logger
}

func newFileHandler(root string, log *slog.Logger) *fileHandler {
	return &fileHandler{root: filepath.Clean(root), log: log}
}

// serveRoot handles GET <virtual_path>: the mapping root itself.
func (h *fileHandler) serveRoot(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "")
}

// ServeHTTP handles GET <virtual_path>/*: rest under the mapping root.
func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, chi.URLParam(r, "*"))
}

func (h *fileHandler) serveFile(w http.ResponseWriter, r *http.Request, rest string) {
	// Never rely on the router to have normalized ".." away.
	if containsDotDot(rest) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	full := filepath.Join(h.root, filepath.FromSlash(rest))
	if !pathWithin(full, h.root) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			http.NotFound(w, r)
			return
		}
		h.log.Error("stat failed", "path", full, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Directory listing is reserved; directories are 404 in v1.
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(full))
	if ctype == "" {
		ctype = fallbackContentType
	}

	servePath := full
	if variant, encoding := pickPrecompressed(r.Header.Get("Accept-Encoding"), full); variant != "" {
		servePath = variant
		w.Header().Set("Content-Encoding", encoding)
		w.Header().Add("Vary", "Accept-Encoding")
	}

	f, err := os.Open(servePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.log.Error("open failed", "path", servePath, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		h.log.Error("stat failed", "path", servePath, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ctype)
	http.ServeContent(w, r, info.Name(), st.ModTime(), f)
}

// pickPrecompressed looks for .br and .gz siblings of path and returns
// the first the client accepts, preferring br over gzip.
func pickPrecompressed(acceptEncoding, path string) (variant, encoding string) {
	if acceptEncoding == "" {
		return "", ""
	}
	candidates := []struct {
		suffix string
		token  string
		header string
	}{
		{".br", "br", "br"},
		{".gz", "gzip", "gzip"},
	}
	for _, c := range candidates {
		if !acceptsEncoding(acceptEncoding, c.token) {
			continue
		}
		if info, err := os.Stat(path + c.suffix); err == nil && !info.IsDir() {
			return path + c.suffix, c.header
		}
	}
	return "", ""
}

// acceptsEncoding reports whether the Accept-Encoding header lists the
// given token (possibly with a non-zero quality).
func acceptsEncoding(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		name, q, hasQ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), token) {
			continue
		}
		if hasQ {
			qv := strings.TrimSpace(q)
			if strings.HasPrefix(qv, "q=0") && !strings.ContainsAny(strings.TrimPrefix(qv, "q=0"), "123456789") {
				return false
			}
		}
		return true
	}
	return false
}

// containsDotDot reports whether any slash-separated segment of the
// request remainder is "..".
func containsDotDot(rest string) bool {
	for _, seg := range strings.FieldsFunc(rest, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// pathWithin reports whether thePath is potentialParent or lies inside
// it. Both paths are compared cleaned and without trailing separators;
// the check is lexical, so it must run on an already-joined, cleaned
// path.
func pathWithin(thePath, potentialParent string) bool {
	thePath = stripTrailingSep(filepath.Clean(thePath))
	potentialParent = stripTrailingSep(filepath.Clean(potentialParent))

	if runtime.GOOS == "windows" {
		thePath = strings.ToLower(thePath)
		potentialParent = strings.ToLower(potentialParent)
	}

	plen := len(potentialParent)
	return strings.HasPrefix(thePath, potentialParent) &&
		(len(thePath) == plen || thePath[plen] == filepath.Separator)
}

func stripTrailingSep(p string) string {
	return strings.TrimRight(p, string(filepath.Separator))
}
