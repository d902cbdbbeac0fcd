package engine

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staticmock/staticmock/pkg/config"
	"github.com/staticmock/staticmock/pkg/logging"
)

// writeFile creates a file with parents under dir.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestRouter builds a routing table for a single enabled mapping of
// /assets onto root.
func newTestRouter(t *testing.T, root string) http.Handler {
	t.Helper()
	return buildRouter(config.DefaultServerConfig(), []*config.DirectoryMapping{
		{ID: 1, VirtualPath: "/assets", LocalPath: root, Enabled: true},
	}, logging.Nop())
}

func get(h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ============================================================
// File serving
// ============================================================

func TestServeFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "<html>hello</html>")
	writeFile(t, root, "sub/notes.txt", "notes")
	router := newTestRouter(t, root)

	rec := get(router, "/assets/index.html", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>hello</html>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = get(router, "/assets/sub/notes.txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "notes", rec.Body.String())
}

func TestServeFileHead(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "<html>hello</html>")
	router := newTestRouter(t, root)

	req := httptest.NewRequest(http.MethodHead, "/assets/index.html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServeFileMissing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	router := newTestRouter(t, root)

	rec := get(router, "/assets/nope.txt", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeDirectoryIs404(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "sub/notes.txt", "notes")
	router := newTestRouter(t, root)

	// The mapping root and subdirectories both refuse listing.
	assert.Equal(t, http.StatusNotFound, get(router, "/assets", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/assets/sub", nil).Code)
}

func TestServeFileUnknownExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "blob.qqq", "opaque")
	router := newTestRouter(t, root)

	rec := get(router, "/assets/blob.qqq", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fallbackContentType, rec.Header().Get("Content-Type"))
}

func TestUnmappedPrefixIs404(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "x")
	router := newTestRouter(t, root)

	assert.Equal(t, http.StatusNotFound, get(router, "/other/index.html", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/", nil).Code)
}

// ============================================================
// Path escapes
// ============================================================

func TestDotDotIsForbidden(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	root := filepath.Join(parent, "www")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeFile(t, parent, "secret.txt", "secret")
	writeFile(t, root, "ok.txt", "ok")

	router := newTestRouter(t, root)

	for _, target := range []string{
		"/assets/../secret.txt",
		"/assets/sub/../../secret.txt",
		"/assets/..",
	} {
		rec := get(router, target, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "target %s", target)
		assert.NotContains(t, rec.Body.String(), "secret")
	}

	// Sibling lookups still work.
	assert.Equal(t, http.StatusOK, get(router, "/assets/ok.txt", nil).Code)
}

func TestContainsDotDot(t *testing.T) {
	t.Parallel()

	assert.True(t, containsDotDot(".."))
	assert.True(t, containsDotDot("a/../b"))
	assert.True(t, containsDotDot(`a\..\b`))
	assert.False(t, containsDotDot(""))
	assert.False(t, containsDotDot("a/b.txt"))
	assert.False(t, containsDotDot("a/..b/c"))
	assert.False(t, containsDotDot("a/b../c"))
}

func TestPathWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		parent string
		want   bool
	}{
		{"/srv/www/a.txt", "/srv/www", true},
		{"/srv/www", "/srv/www", true},
		{"/srv/www/", "/srv/www", true},
		{"/srv/www-evil/a.txt", "/srv/www", false},
		{"/srv/secret.txt", "/srv/www", false},
		{"/srv/www/../secret.txt", "/srv/www", false},
		{"/", "/", true},
		{"/srv", "/", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pathWithin(tt.path, tt.parent),
			"pathWithin(%q, %q)", tt.path, tt.parent)
	}
}

// ============================================================
// Precompressed variants
// ============================================================

func TestPrecompressedPreference(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.js", "plain")
	writeFile(t, root, "app.js.gz", "gzip-bytes")
	writeFile(t, root, "app.js.br", "br-bytes")
	router := newTestRouter(t, root)

	// br beats gzip when both are accepted.
	rec := get(router, "/assets/app.js", http.Header{"Accept-Encoding": {"gzip, br"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br-bytes", rec.Body.String())
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))

	// gzip only.
	rec = get(router, "/assets/app.js", http.Header{"Accept-Encoding": {"gzip"}})
	assert.Equal(t, "gzip-bytes", rec.Body.String())
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	// No acceptable encoding: identity.
	rec = get(router, "/assets/app.js", nil)
	assert.Equal(t, "plain", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestPrecompressedMissingVariant(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.js", "plain")
	writeFile(t, root, "app.js.gz", "gzip-bytes")
	router := newTestRouter(t, root)

	// br accepted but only a .gz sibling exists.
	rec := get(router, "/assets/app.js", http.Header{"Accept-Encoding": {"br, gzip"}})
	assert.Equal(t, "gzip-bytes", rec.Body.String())
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestAcceptsEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		token  string
		want   bool
	}{
		{"gzip", "gzip", true},
		{"gzip, br", "br", true},
		{"GZIP", "gzip", true},
		{"gzip;q=0.5", "gzip", true},
		{"gzip;q=0", "gzip", false},
		{"gzip;q=0.000", "gzip", false},
		{"gzip;q=0.001", "gzip", true},
		{"br", "gzip", false},
		{"", "gzip", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, acceptsEncoding(tt.header, tt.token),
			"acceptsEncoding(%q, %q)", tt.header, tt.token)
	}
}

// ============================================================
// Route table construction
// ============================================================

func TestDisabledMappingNotRouted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "x")

	router := buildRouter(config.DefaultServerConfig(), []*config.DirectoryMapping{
		{ID: 1, VirtualPath: "/assets", LocalPath: root, Enabled: false},
	}, logging.Nop())

	assert.Equal(t, http.StatusNotFound, get(router, "/assets/index.html", nil).Code)
}

func TestMissingLocalDirDropped(t *testing.T) {
	t.Parallel()

	router := buildRouter(config.DefaultServerConfig(), []*config.DirectoryMapping{
		{ID: 1, VirtualPath: "/assets", LocalPath: "/does/not/exist", Enabled: true},
	}, logging.Nop())

	assert.Equal(t, http.StatusNotFound, get(router, "/assets/index.html", nil).Code)
}

func TestMetacharacterVirtualPathDropped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "x")

	// Stored rows predating the virtual-path metacharacter check must not
	// panic route construction; such mappings are dropped, the rest serve.
	for _, vp := range []string{"/files{", "/files/{id}", "/files}", "/files/*"} {
		var router http.Handler
		require.NotPanics(t, func() {
			router = buildRouter(config.DefaultServerConfig(), []*config.DirectoryMapping{
				{ID: 1, VirtualPath: vp, LocalPath: root, Enabled: true},
				{ID: 2, VirtualPath: "/assets", LocalPath: root, Enabled: true},
			}, logging.Nop())
		})
		assert.Equal(t, http.StatusOK, get(router, "/assets/index.html", nil).Code)
	}
}

func TestRootMapping(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "root file")

	router := buildRouter(config.DefaultServerConfig(), []*config.DirectoryMapping{
		{ID: 1, VirtualPath: "/", LocalPath: root, Enabled: true},
	}, logging.Nop())

	rec := get(router, "/index.html", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root file", rec.Body.String())
}

func TestLongestPrefixWins(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	inner := t.TempDir()
	writeFile(t, outer, "file.txt", "outer")
	writeFile(t, inner, "file.txt", "inner")

	router := buildRouter(config.DefaultServerConfig(), []*config.DirectoryMapping{
		{ID: 1, VirtualPath: "/a", LocalPath: outer, Enabled: true},
		{ID: 2, VirtualPath: "/a/b", LocalPath: inner, Enabled: true},
	}, logging.Nop())

	assert.Equal(t, "inner", get(router, "/a/b/file.txt", nil).Body.String())
	assert.Equal(t, "outer", get(router, "/a/file.txt", nil).Body.String())
}

func TestHealthRoute(t *testing.T) {
	t.Parallel()

	router := buildRouter(config.DefaultServerConfig(), nil, logging.Nop())

	rec := get(router, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
