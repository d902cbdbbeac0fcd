// Package store defines the persistence contract for the server
// configuration and the directory mapping table.
//
// Implementations serialize concurrent callers on their underlying
// connection pool; every operation is a single-statement transaction.
package store

import (
	"context"
	"errors"

	"github.com/staticmock/staticmock/pkg/config"
)

// ErrNotFound is returned when a mapping id does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a virtual path is already mapped.
var ErrConflict = errors.New("virtual path already exists")

// Store persists the server configuration and directory mappings.
type Store interface {
	// GetConfig returns the configuration, inserting defaults on first read.
	GetConfig(ctx context.Context) (*config.ServerConfig, error)

	// UpdateConfig applies a partial update and returns the new
	// configuration. Absent patch fields preserve the current value.
	UpdateConfig(ctx context.Context, patch *config.ServerConfigPatch) (*config.ServerConfig, error)

	// GetMappings returns all mappings ordered by virtual path.
	GetMappings(ctx context.Context) ([]*config.DirectoryMapping, error)

	// GetEnabledMappings returns enabled mappings ordered by virtual path.
	GetEnabledMappings(ctx context.Context) ([]*config.DirectoryMapping, error)

	// CreateMapping inserts a mapping after normalizing the virtual path.
	// Returns ErrConflict when the virtual path is already mapped.
	CreateMapping(ctx context.Context, virtualPath, localPath string) (*config.DirectoryMapping, error)

	// UpdateMapping applies a partial update, re-normalizing the virtual
	// path when it changes. Returns ErrNotFound when the id is absent.
	UpdateMapping(ctx context.Context, id int64, patch *config.MappingPatch) (*config.DirectoryMapping, error)

	// DeleteMapping removes a mapping. Returns ErrNotFound when absent.
	DeleteMapping(ctx context.Context, id int64) error

	// Close releases the underlying connection pool.
	Close() error
}
