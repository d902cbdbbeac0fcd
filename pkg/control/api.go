package control

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/staticmock/staticmock/pkg/command"
	"github.com/staticmock/staticmock/pkg/logging"
	"github.com/staticmock/staticmock/pkg/metrics"
)

// API serves the control REST endpoints on a loopback port.
type API struct {
	port       int
	service    *command.Service
	metrics    *metrics.Registry
	httpServer *http.Server
	startTime  time.Time
	version    string
	log        *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics attaches a metrics registry and enables /metrics.
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *API) {
		a.metrics = reg
	}
}

// WithVersion sets the version string reported by /health.
func WithVersion(v string) Option {
	return func(a *API) {
		a.version = v
	}
}

// New creates a control API bound to 127.0.0.1:port.
func New(port int, service *command.Service, opts ...Option) *API {
	a := &API{
		port:    port,
		service: service,
		version: "dev",
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	a.httpServer = &http.Server{
		Addr:        net.JoinHostPort("127.0.0.1", strconv.Itoa(port)),
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
	}

	return a
}

// Handler returns the route handler. Exposed for tests.
func (a *API) Handler() http.Handler {
	return a.httpServer.Handler
}

// Start begins serving in the background.
func (a *API) Start() error {
	a.startTime = time.Now()

	a.log.Info("starting control API", "addr", a.httpServer.Addr)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("control API error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the API down, waiting briefly for in-flight requests.
func (a *API) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.httpServer.Shutdown(ctx)
}

// Uptime reports how long the API has been running.
func (a *API) Uptime() time.Duration {
	if a.startTime.IsZero() {
		return 0
	}
	return time.Since(a.startTime)
}
