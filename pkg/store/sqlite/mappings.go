package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/staticmock/staticmock/pkg/config"
	"github.com/staticmock/staticmock/pkg/store"
)

var _ store.Store = (*Store)(nil)

const mappingColumns = `id, virtual_path, local_path, enabled, created_at, updated_at`

// GetMappings returns all mappings ordered by virtual path.
func (s *Store) GetMappings(ctx context.Context) ([]*config.DirectoryMapping, error) {
	return s.queryMappings(ctx, `
		SELECT `+mappingColumns+` FROM mock_server_mappings
		ORDER BY virtual_path`)
}

// GetEnabledMappings returns enabled mappings ordered by virtual path.
func (s *Store) GetEnabledMappings(ctx context.Context) ([]*config.DirectoryMapping, error) {
	return s.queryMappings(ctx, `
		SELECT `+mappingColumns+` FROM mock_server_mappings
		WHERE enabled = 1 ORDER BY virtual_path`)
}

// CreateMapping inserts a mapping, normalizing the virtual path first.
func (s *Store) CreateMapping(ctx context.Context, virtualPath, localPath string) (*config.DirectoryMapping, error) {
	vp, err := config.NormalizeVirtualPath(virtualPath)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateLocalPath(localPath); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO mock_server_mappings (virtual_path, local_path, enabled, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)`,
		vp, localPath, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("virtual path %q: %w", vp, store.ErrConflict)
		}
		return nil, fmt.Errorf("insert mapping: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert mapping: %w", err)
	}
	return &config.DirectoryMapping{
		ID:          id,
		VirtualPath: vp,
		LocalPath:   localPath,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateMapping applies a partial update, re-normalizing the virtual path
// when it changes.
func (s *Store) UpdateMapping(ctx context.Context, id int64, patch *config.MappingPatch) (*config.DirectoryMapping, error) {
	current, err := s.getMapping(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return current, nil
	}

	next := *current
	if patch.VirtualPath != nil {
		vp, err := config.NormalizeVirtualPath(*patch.VirtualPath)
		if err != nil {
			return nil, err
		}
		next.VirtualPath = vp
	}
	if patch.LocalPath != nil {
		if err := config.ValidateLocalPath(*patch.LocalPath); err != nil {
			return nil, err
		}
		next.LocalPath = *patch.LocalPath
	}
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	next.UpdatedAt = time.Now().UTC()

	enabled := 0
	if next.Enabled {
		enabled = 1
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE mock_server_mappings
		SET virtual_path = ?, local_path = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		next.VirtualPath, next.LocalPath, enabled, formatTime(next.UpdatedAt), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("virtual path %q: %w", next.VirtualPath, store.ErrConflict)
		}
		return nil, fmt.Errorf("update mapping: %w", err)
	}
	return &next, nil
}

// DeleteMapping removes a mapping by id.
func (s *Store) DeleteMapping(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mock_server_mappings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mapping %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) getMapping(ctx context.Context, id int64) (*config.DirectoryMapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+` FROM mock_server_mappings WHERE id = ?`, id)
	m, err := scanMapping(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mapping %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return m, nil
}

func (s *Store) queryMappings(ctx context.Context, query string) ([]*config.DirectoryMapping, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var out []*config.DirectoryMapping
	for rows.Next() {
		m, err := scanMapping(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	return out, nil
}

func scanMapping(scan func(...any) error) (*config.DirectoryMapping, error) {
	var (
		m         config.DirectoryMapping
		enabled   int
		createdAt string
		updatedAt string
	)
	if err := scan(&m.ID, &m.VirtualPath, &m.LocalPath, &enabled, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.Enabled = enabled != 0
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}
