package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/staticmock/staticmock/pkg/config"
	"github.com/staticmock/staticmock/pkg/engine"
	"github.com/staticmock/staticmock/pkg/logbus"
	"github.com/staticmock/staticmock/pkg/logging"
	"github.com/staticmock/staticmock/pkg/store"
)

// ErrNotFound is returned when a listed path does not exist.
var ErrNotFound = errors.New("path not found")

// ErrNotADirectory is returned when a listed path is not a directory.
var ErrNotADirectory = errors.New("not a directory")

// DirectoryPicker is the OS-native folder picker collaborator. The core
// never implements it; the host shell does.
type DirectoryPicker interface {
	// PickDirectory shows the picker and returns the chosen absolute
	// path, or "" when the user cancelled.
	PickDirectory(ctx context.Context) (string, error)
}

// Service implements the command surface over the store, the supervisor
// and the log bus.
type Service struct {
	store  store.Store
	server *engine.Server
	bus    *logbus.Bus
	picker DirectoryPicker
	log    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDirectoryPicker installs the host's folder picker.
func WithDirectoryPicker(p DirectoryPicker) ServiceOption {
	return func(s *Service) {
		s.picker = p
	}
}

// NewService creates the command surface.
func NewService(st store.Store, srv *engine.Server, bus *logbus.Bus, opts ...ServiceOption) *Service {
	s := &Service{
		store:  st,
		server: srv,
		bus:    bus,
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current server state.
func (s *Service) GetState() config.ServerState {
	return s.server.State()
}

// StartServer reads the current configuration and enabled mappings and
// starts the server from that snapshot.
func (s *Service) StartServer(ctx context.Context) (config.ServerState, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return s.server.State(), fmt.Errorf("load config: %w", err)
	}
	mappings, err := s.store.GetEnabledMappings(ctx)
	if err != nil {
		return s.server.State(), fmt.Errorf("load mappings: %w", err)
	}
	return s.server.Start(cfg, mappings)
}

// StopServer stops the server. Always succeeds; stopping a stopped
// server is a no-op.
func (s *Service) StopServer() (config.ServerState, error) {
	if err := s.server.Stop(); err != nil {
		return s.server.State(), err
	}
	return s.server.State(), nil
}

// GetConfig returns the persisted configuration.
func (s *Service) GetConfig(ctx context.Context) (*config.ServerConfig, error) {
	return s.store.GetConfig(ctx)
}

// UpdateConfig applies a partial configuration update.
func (s *Service) UpdateConfig(ctx context.Context, patch *config.ServerConfigPatch) (*config.ServerConfig, error) {
	return s.store.UpdateConfig(ctx, patch)
}

// GetMappings returns all mappings ordered by virtual path.
func (s *Service) GetMappings(ctx context.Context) ([]*config.DirectoryMapping, error) {
	return s.store.GetMappings(ctx)
}

// CreateMapping inserts a new mapping.
func (s *Service) CreateMapping(ctx context.Context, virtualPath, localPath string) (*config.DirectoryMapping, error) {
	return s.store.CreateMapping(ctx, virtualPath, localPath)
}

// UpdateMapping applies a partial mapping update.
func (s *Service) UpdateMapping(ctx context.Context, id int64, patch *config.MappingPatch) (*config.DirectoryMapping, error) {
	return s.store.UpdateMapping(ctx, id, patch)
}

// DeleteMapping removes a mapping.
func (s *Service) DeleteMapping(ctx context.Context, id int64) error {
	return s.store.DeleteMapping(ctx, id)
}

// SelectDirectory delegates to the installed picker. Without one it
// reports no selection.
func (s *Service) SelectDirectory(ctx context.Context) (string, error) {
	if s.picker == nil {
		return "", nil
	}
	return s.picker.PickDirectory(ctx)
}

// SubscribeLogs subscribes to the access-log bus. The caller owns the
// subscription and must Close it.
func (s *Service) SubscribeLogs() *logbus.Subscription {
	return s.bus.Subscribe()
}
