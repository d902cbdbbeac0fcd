package command

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/staticmock/staticmock/pkg/config"
)

// DirEntry is one row of a directory listing for the mapping picker.
type DirEntry struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	IsDirectory bool    `json:"is_directory"`
	Size        *int64  `json:"size"`
	MimeType    *string `json:"mime_type"`
}

// ListDirectory lists the children of an absolute path, directories
// first, then by name case-insensitively. Size and MIME type are only
// set for regular files.
func (s *Service) ListDirectory(path string) ([]DirEntry, error) {
	if !filepath.IsAbs(path) {
		return nil, &config.ValidationError{Field: "path", Reason: "must be absolute"}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && strings.Contains(pathErr.Err.Error(), "not a directory") {
			return nil, fmt.Errorf("%s: %w", path, ErrNotADirectory)
		}
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return nil, fmt.Errorf("%s: %w", path, ErrNotADirectory)
		}
		return nil, fmt.Errorf("list directory: %w", err)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		item := DirEntry{
			Name:        e.Name(),
			Path:        filepath.Join(path, e.Name()),
			IsDirectory: e.IsDir(),
		}
		if !e.IsDir() {
			if info, err := e.Info(); err == nil {
				size := info.Size()
				item.Size = &size
			}
			if ctype := mime.TypeByExtension(filepath.Ext(e.Name())); ctype != "" {
				item.MimeType = &ctype
			}
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDirectory != out[j].IsDirectory {
			return out[i].IsDirectory
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
