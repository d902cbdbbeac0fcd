package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staticmock/staticmock/pkg/config"
	"github.com/staticmock/staticmock/pkg/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// ============================================================
// Configuration
// ============================================================

func TestGetConfigInsertsDefaults(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	cfg, err := s.GetConfig(ctx)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, config.CORSModeSimple, cfg.CORSMode)
	assert.Equal(t, config.DefaultCORSMaxAge, cfg.CORSMaxAge)
	assert.False(t, cfg.UpdatedAt.IsZero())

	// Second read returns the persisted row, not a fresh default.
	again, err := s.GetConfig(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.UpdatedAt.Equal(again.UpdatedAt))
}

func TestUpdateConfigPartialPatch(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	port := 3000
	updated, err := s.UpdateConfig(ctx, &config.ServerConfigPatch{Port: &port})
	require.NoError(t, err)
	assert.Equal(t, 3000, updated.Port)
	assert.Equal(t, config.CORSModeSimple, updated.CORSMode)

	// The change persists across reads.
	cfg, err := s.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
}

func TestUpdateConfigRejectsInvalidPatch(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	before, err := s.GetConfig(ctx)
	require.NoError(t, err)

	bad := 0
	_, err = s.UpdateConfig(ctx, &config.ServerConfigPatch{Port: &bad})
	var vErr *config.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "port", vErr.Field)

	// Nothing was written.
	after, err := s.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Port, after.Port)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestUpdateConfigCORSLists(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	mode := config.CORSModeAdvanced
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	_, err := s.UpdateConfig(ctx, &config.ServerConfigPatch{
		CORSMode:    &mode,
		CORSOrigins: &origins,
	})
	require.NoError(t, err)

	cfg, err := s.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.CORSModeAdvanced, cfg.CORSMode)
	assert.Equal(t, origins, cfg.CORSOrigins)
	assert.Nil(t, cfg.CORSMethods)
}

// ============================================================
// Mappings
// ============================================================

func TestCreateMapping(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMapping(ctx, "/assets", "/srv/static/assets")
	require.NoError(t, err)

	assert.Positive(t, m.ID)
	assert.Equal(t, "/assets", m.VirtualPath)
	assert.Equal(t, "/srv/static/assets", m.LocalPath)
	assert.True(t, m.Enabled)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
}

func TestCreateMappingNormalizesVirtualPath(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMapping(ctx, "assets/", "/srv/static")
	require.NoError(t, err)
	assert.Equal(t, "/assets", m.VirtualPath)
}

func TestCreateMappingValidation(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	var vErr *config.ValidationError

	_, err := s.CreateMapping(ctx, "", "/srv/static")
	require.ErrorAs(t, err, &vErr)

	_, err = s.CreateMapping(ctx, "/ok", "  ")
	require.ErrorAs(t, err, &vErr)
}

func TestCreateMappingDuplicateVirtualPath(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateMapping(ctx, "/assets", "/srv/a")
	require.NoError(t, err)

	_, err = s.CreateMapping(ctx, "/assets", "/srv/b")
	assert.ErrorIs(t, err, store.ErrConflict)

	// Normalization applies before the uniqueness check.
	_, err = s.CreateMapping(ctx, "assets/", "/srv/c")
	assert.ErrorIs(t, err, store.ErrConflict)

	// Case-sensitive uniqueness: different case is a different path.
	_, err = s.CreateMapping(ctx, "/Assets", "/srv/d")
	assert.NoError(t, err)
}

func TestGetMappingsOrderedByVirtualPath(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for _, vp := range []string{"/zeta", "/alpha", "/mid"} {
		_, err := s.CreateMapping(ctx, vp, "/srv"+vp)
		require.NoError(t, err)
	}

	mappings, err := s.GetMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 3)
	assert.Equal(t, "/alpha", mappings[0].VirtualPath)
	assert.Equal(t, "/mid", mappings[1].VirtualPath)
	assert.Equal(t, "/zeta", mappings[2].VirtualPath)
}

func TestGetEnabledMappingsFiltersDisabled(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	on, err := s.CreateMapping(ctx, "/on", "/srv/on")
	require.NoError(t, err)
	off, err := s.CreateMapping(ctx, "/off", "/srv/off")
	require.NoError(t, err)

	disabled := false
	_, err = s.UpdateMapping(ctx, off.ID, &config.MappingPatch{Enabled: &disabled})
	require.NoError(t, err)

	enabled, err := s.GetEnabledMappings(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, on.ID, enabled[0].ID)

	all, err := s.GetMappings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateMapping(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMapping(ctx, "/old", "/srv/old")
	require.NoError(t, err)

	vp := "new/"
	lp := "/srv/new"
	updated, err := s.UpdateMapping(ctx, m.ID, &config.MappingPatch{
		VirtualPath: &vp,
		LocalPath:   &lp,
	})
	require.NoError(t, err)

	assert.Equal(t, "/new", updated.VirtualPath)
	assert.Equal(t, "/srv/new", updated.LocalPath)
	assert.True(t, m.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(m.UpdatedAt) || updated.UpdatedAt.Equal(m.UpdatedAt))
}

func TestUpdateMappingNotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	enabled := false
	_, err := s.UpdateMapping(ctx, 9999, &config.MappingPatch{Enabled: &enabled})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateMappingConflict(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateMapping(ctx, "/a", "/srv/a")
	require.NoError(t, err)
	b, err := s.CreateMapping(ctx, "/b", "/srv/b")
	require.NoError(t, err)

	vp := "/a"
	_, err = s.UpdateMapping(ctx, b.ID, &config.MappingPatch{VirtualPath: &vp})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestDeleteMapping(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMapping(ctx, "/gone", "/srv/gone")
	require.NoError(t, err)

	require.NoError(t, s.DeleteMapping(ctx, m.ID))

	mappings, err := s.GetMappings(ctx)
	require.NoError(t, err)
	assert.Empty(t, mappings)

	assert.ErrorIs(t, s.DeleteMapping(ctx, m.ID), store.ErrNotFound)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateMapping(ctx, "/kept", "/srv/kept")
	require.NoError(t, err)
	port := 4000
	_, err = s.UpdateConfig(ctx, &config.ServerConfigPatch{Port: &port})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	mappings, err := s2.GetMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "/kept", mappings[0].VirtualPath)

	cfg, err := s2.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
}
