package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/staticmock/staticmock/pkg/config"
)

// GetConfig returns the single configuration row, lazily inserting
// defaults on first read.
func (s *Store) GetConfig(ctx context.Context) (*config.ServerConfig, error) {
	cfg, err := s.readConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	defaults := config.DefaultServerConfig()
	defaults.UpdatedAt = time.Now().UTC()
	if err := s.writeConfig(ctx, defaults, true); err != nil {
		return nil, fmt.Errorf("insert default config: %w", err)
	}
	return defaults, nil
}

// UpdateConfig applies a partial update. Absent fields preserve the
// current value; updated_at is stamped.
func (s *Store) UpdateConfig(ctx context.Context, patch *config.ServerConfigPatch) (*config.ServerConfig, error) {
	if patch == nil {
		return s.GetConfig(ctx)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(current)
	next.UpdatedAt = time.Now().UTC()
	if err := s.writeConfig(ctx, next, false); err != nil {
		return nil, fmt.Errorf("update config: %w", err)
	}
	return next, nil
}

func (s *Store) readConfig(ctx context.Context) (*config.ServerConfig, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT port, cors_mode, cors_origins, cors_methods, cors_headers,
		       cors_max_age, show_directory_listing, updated_at
		FROM mock_server_config WHERE id = 1`)

	var (
		cfg       config.ServerConfig
		mode      string
		origins   sql.NullString
		methods   sql.NullString
		headers   sql.NullString
		listing   int
		updatedAt string
	)
	if err := row.Scan(&cfg.Port, &mode, &origins, &methods, &headers,
		&cfg.CORSMaxAge, &listing, &updatedAt); err != nil {
		return nil, err
	}

	cfg.CORSMode = config.CORSMode(mode)
	cfg.CORSOrigins = decodeList(origins)
	cfg.CORSMethods = decodeList(methods)
	cfg.CORSHeaders = decodeList(headers)
	cfg.ShowDirectoryListing = listing != 0
	cfg.UpdatedAt = parseTime(updatedAt)
	return &cfg, nil
}

func (s *Store) writeConfig(ctx context.Context, cfg *config.ServerConfig, insert bool) error {
	listing := 0
	if cfg.ShowDirectoryListing {
		listing = 1
	}
	args := []any{
		cfg.Port, string(cfg.CORSMode),
		encodeList(cfg.CORSOrigins), encodeList(cfg.CORSMethods), encodeList(cfg.CORSHeaders),
		cfg.CORSMaxAge, listing, formatTime(cfg.UpdatedAt),
	}

	if insert {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO mock_server_config
			    (id, port, cors_mode, cors_origins, cors_methods, cors_headers,
			     cors_max_age, show_directory_listing, updated_at)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE mock_server_config
		SET port = ?, cors_mode = ?, cors_origins = ?, cors_methods = ?,
		    cors_headers = ?, cors_max_age = ?, show_directory_listing = ?,
		    updated_at = ?
		WHERE id = 1`, args...)
	return err
}

// encodeList serializes a list field to JSON text, NULL when unset.
func encodeList(list []string) any {
	if list == nil {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return string(data)
}

// decodeList parses a stored JSON list. Parse failures degrade to nil.
func decodeList(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil
	}
	return out
}
