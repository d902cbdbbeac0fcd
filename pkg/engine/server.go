package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/staticmock/staticmock/pkg/config"
	"github.com/staticmock/staticmock/pkg/logbus"
	"github.com/staticmock/staticmock/pkg/logging"
	"github.com/staticmock/staticmock/pkg/metrics"
)

// ShutdownTimeout is the graceful-shutdown deadline: in-flight requests
// get this long to complete before they are aborted.
const ShutdownTimeout = 5 * time.Second

// Server supervises the mock static file server lifecycle. It owns the
// bound socket and the shutdown signal and enforces the single-instance
// discipline: at most one running server per supervisor.
type Server struct {
	bus     *logbus.Bus
	log     *slog.Logger
	metrics *metrics.Registry

	mu         sync.Mutex
	running    bool
	port       int
	httpServer *http.Server
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the operational logger for the supervisor.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics wires the supervisor and the serving path to a metrics
// registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Server) {
		s.metrics = reg
	}
}

// New creates a stopped supervisor publishing access-log records to bus.
func New(bus *logbus.Bus, opts ...Option) *Server {
	if bus == nil {
		bus = logbus.New(logbus.DefaultCapacity)
	}
	s := &Server{
		bus: bus,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bus returns the access-log bus the server publishes to.
func (s *Server) Bus() *logbus.Bus {
	return s.bus
}

// Start builds the routing table and CORS policy from the given snapshot,
// binds 127.0.0.1:<port> and begins serving. Port 0 asks the OS for a
// free port; the returned state carries the actually bound port.
//
// Concurrent Start calls serialize; the loser gets ErrAlreadyRunning. A
// failed bind returns a *BindError and leaves the supervisor stopped.
func (s *Server) Start(cfg *config.ServerConfig, mappings []*config.DirectoryMapping) (config.ServerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.stateLocked(), ErrAlreadyRunning
	}
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}

	router := buildRouter(cfg, mappings, s.log)
	handler := accessLogMiddleware(s.bus, s.metrics, s.log)(router)

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port)))
	if err != nil {
		return s.stateLocked(), &BindError{Port: cfg.Port, Err: err}
	}

	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		_ = ln.Close()
		return s.stateLocked(), fmt.Errorf("unexpected listener address %T", ln.Addr())
	}

	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("mock server error", "error", err)
		}
	}()

	s.running = true
	s.port = tcpAddr.Port
	s.httpServer = srv
	if s.metrics != nil {
		s.metrics.ServerUp.Set(1)
	}
	s.log.Info("mock server started", "port", s.port)
	return s.stateLocked(), nil
}

// Stop gracefully shuts the server down. In-flight requests get up to
// ShutdownTimeout to complete, then their connections are closed. Stop is
// a no-op when the server is already stopped.
//
// The supervisor transitions to stopped immediately; the lock is not held
// while connections drain, so State, IsRunning and a subsequent Start stay
// responsive during the graceful window.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	srv := s.httpServer
	s.running = false
	s.httpServer = nil
	s.port = 0
	if s.metrics != nil {
		s.metrics.ServerUp.Set(0)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.log.Warn("graceful shutdown deadline exceeded, aborting connections", "error", err)
		_ = srv.Close()
	}
	s.log.Info("mock server stopped")
	return nil
}

// UpdateMappings is defined for API completeness and always fails: the
// routing table is an immutable per-run snapshot.
func (s *Server) UpdateMappings(_ []*config.DirectoryMapping) error {
	return ErrUnsupported
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Port returns the actually bound port, 0 when stopped.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// State returns the derived server state.
func (s *Server) State() config.ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Server) stateLocked() config.ServerState {
	if !s.running {
		return config.ServerState{Status: config.StatusStopped}
	}
	return config.ServerState{
		Status: config.StatusRunning,
		Port:   s.port,
		URL:    fmt.Sprintf("http://127.0.0.1:%d", s.port),
	}
}
