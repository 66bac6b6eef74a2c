/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the medical inventory server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, config.env, environment), then flags
  2. Open and initialize the SQLite store
  3. Build the ledger, session gate and API handler
  4. Start the expiry monitor
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides HTTP_PORT)
  -db      SQLite database path (overrides DATA_DIR/DB_FILE)
           Use ":memory:" for an in-memory database (no backup/restore)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the expiry monitor
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

RESTART AFTER RESTORE:
  A successful restore closes the store. The server then shuts down the
  same way and re-executes its own binary with the original arguments,
  which reopens the restored file.

EXAMPLES:
  # Run with the default data directory
  AUTH_PASSWORD=secret ./server

  # Run with an explicit database file
  AUTH_PASSWORD=secret ./server -db="./data/inventory.db"

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/medstock/inventory-engine/api"
	"github.com/medstock/inventory-engine/config"
	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/logger"
	"github.com/medstock/inventory-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides HTTP_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DATA_DIR/DB_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	path := *dbPath
	if path == "" {
		if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Store.DataDir).Msg("failed to create data directory")
		}
		path = cfg.Store.Path()
	}

	// Initialize store
	store, err := sqlite.New(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to open database")
	}
	if err := store.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	l := ledger.New(store, ledger.WithSalePolicy(ledger.SalePolicy{
		RejectOversell: cfg.Sales.RejectOversell,
	}))

	gate, err := api.NewGate(api.GateConfig{
		Username:     cfg.Auth.Username,
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
		IdleTimeout:  cfg.Auth.IdleTimeout,
		Secret:       cfg.Auth.TokenSecret,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure authentication")
	}

	restart := make(chan struct{}, 1)

	// Initialize handler
	handler := api.NewHandler(l, store, gate, log)
	handler.CORSOrigins = cfg.HTTP.CORSOrigins
	handler.BackupDir = filepath.Join(filepath.Dir(path), "backups")
	handler.OnRestore = func() {
		select {
		case restart <- struct{}{}:
		default:
		}
	}

	// Create router
	router := api.NewRouter(handler)

	monitor := api.NewExpiryMonitor(l, log)
	monitor.CheckInterval = cfg.Expiry.CheckInterval
	monitor.Start()

	// Create server
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Str("db", path).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal or a restore
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	restarting := false
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case <-restart:
		restarting = true
		log.Warn().Msg("database restored, restarting server")
	}

	monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}

	if restarting {
		exe, err := os.Executable()
		if err != nil {
			log.Fatal().Err(err).Msg("cannot locate executable for restart")
		}
		if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
			log.Fatal().Err(err).Msg("restart failed")
		}
	}

	log.Info().Msg("server stopped")
}
