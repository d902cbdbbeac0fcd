package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/staticmock/staticmock/internal/cliconfig"
	"github.com/staticmock/staticmock/pkg/command"
	"github.com/staticmock/staticmock/pkg/control"
	"github.com/staticmock/staticmock/pkg/engine"
	"github.com/staticmock/staticmock/pkg/logbus"
	"github.com/staticmock/staticmock/pkg/logging"
	"github.com/staticmock/staticmock/pkg/metrics"
	"github.com/staticmock/staticmock/pkg/store/sqlite"
)

var (
	serveDBPath      string
	serveControlPort int
	serveLogLevel    string
	serveLogFormat   string
	serveAutostart   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the control API and mock server supervisor",
	Long: `Starts the loopback control API and waits for commands. The mock
server itself starts when asked to via the API, or immediately with
--autostart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to the SQLite database (default: user config dir)")
	serveCmd.Flags().IntVar(&serveControlPort, "control-port", 0, "Control API port (default: 9877)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format: text, json")
	serveCmd.Flags().BoolVar(&serveAutostart, "autostart", false, "Start the mock server immediately")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Flags override every other source.
	if serveDBPath != "" {
		cfg.DBPath = serveDBPath
		cfg.Sources["dbPath"] = cliconfig.SourceFlag
	}
	if serveControlPort != 0 {
		cfg.ControlPort = serveControlPort
		cfg.Sources["controlPort"] = cliconfig.SourceFlag
	}
	if serveLogLevel != "" {
		cfg.LogLevel = serveLogLevel
		cfg.Sources["logLevel"] = cliconfig.SourceFlag
	}
	if serveLogFormat != "" {
		cfg.LogFormat = serveLogFormat
		cfg.Sources["logFormat"] = cliconfig.SourceFlag
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("error closing database", "error", err)
		}
	}()

	reg := metrics.New()
	bus := logbus.New(logbus.DefaultCapacity, logbus.WithDropHandler(func() {
		reg.LogRecordsDropped.Inc()
	}))

	server := engine.New(bus,
		engine.WithLogger(log),
		engine.WithMetrics(reg),
	)

	service := command.NewService(st, server, bus, command.WithLogger(log))

	api := control.New(cfg.ControlPort, service,
		control.WithLogger(log),
		control.WithMetrics(reg),
		control.WithVersion(Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Start(); err != nil {
		return fmt.Errorf("start control API: %w", err)
	}
	log.Info("control API listening", "port", cfg.ControlPort, "db", cfg.DBPath)

	if serveAutostart {
		state, err := service.StartServer(ctx)
		if err != nil {
			log.Error("autostart failed", "error", err)
		} else {
			log.Info("mock server started", "url", state.URL)
		}
	}

	<-ctx.Done()
	log.Info("shutting down")

	if err := server.Stop(); err != nil {
		log.Warn("error stopping mock server", "error", err)
	}
	if err := api.Stop(); err != nil {
		log.Warn("error stopping control API", "error", err)
	}
	return nil
}
