package config

import (
	"strings"
	"time"
)

// DirectoryMapping maps a virtual URL path prefix onto a local directory.
type DirectoryMapping struct {
	ID int64 `json:"id"`

	// VirtualPath always starts with "/" and carries no trailing slash
	// except for the root. Unique case-sensitively.
	VirtualPath string `json:"virtual_path"`

	// LocalPath is an absolute filesystem path. Existence is not enforced
	// at write time; missing directories yield 404 at request time.
	LocalPath string `json:"local_path"`

	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MappingPatch is a partial update of a DirectoryMapping. nil fields
// preserve the current value.
type MappingPatch struct {
	VirtualPath *string `json:"virtual_path,omitempty"`
	LocalPath   *string `json:"local_path,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// NormalizeVirtualPath applies the write-time normalization rules to a
// virtual path: force a leading "/", strip a trailing "/" except for the
// root. Empty paths, paths containing ".." segments, and paths containing
// the routing metacharacters "{", "}" or "*" are rejected.
func NormalizeVirtualPath(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", &ValidationError{Field: "virtual_path", Reason: "must not be empty"}
	}
	if strings.ContainsAny(v, "{}*") {
		return "", &ValidationError{Field: "virtual_path", Reason: `must not contain "{", "}" or "*"`}
	}
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	for v != "/" && strings.HasSuffix(v, "/") {
		v = strings.TrimSuffix(v, "/")
	}
	for _, seg := range strings.Split(v[1:], "/") {
		if seg == ".." {
			return "", &ValidationError{Field: "virtual_path", Reason: `must not contain ".." segments`}
		}
	}
	return v, nil
}

// ValidateLocalPath rejects blank local paths. Existence is deliberately
// not checked; the directory may be created later.
func ValidateLocalPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return &ValidationError{Field: "local_path", Reason: "must not be empty"}
	}
	return nil
}
