/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags, config file, .env, PAYROLL_* variables)
  2. Open the store (SQLite or PostgreSQL)
  3. Load the wage configuration
  4. Create API handler and router
  5. Start the period-close scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file (default: payroll.yaml in . or ./config)
  -env     .env file to load before reading the environment

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Defaults: SQLite file ./data/shifts.db, ./wage.json, port 8080
  ./server

  # PostgreSQL
  PAYROLL_DATABASE_DRIVER=postgres \
  PAYROLL_DATABASE_URL=postgres://localhost/payroll ./server

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - api/scheduler.go: Period-close summaries
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/shift-payroll/api"
	"github.com/warp/shift-payroll/config"
	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/store/postgres"
	"github.com/warp/shift-payroll/store/sqlite"
)

type closableStore interface {
	api.Repository
	Close() error
}

func main() {
	configFile := flag.String("config", "", "config file path")
	envFile := flag.String("env", "", ".env file path")
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := api.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	wage, err := factory.Load(cfg.WageFile)
	if err != nil {
		return err
	}

	handler := api.NewHandler(store, wage, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestLogger:  logger,
	})

	scheduler := api.NewPeriodCloseScheduler(store, handler.Calculator, logger)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = cfg.Scheduler.Interval
	scheduler.Metrics = handler.Metrics
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.ListenAddr),
			slog.String("database", cfg.Database.Driver),
			slog.String("wage_file", cfg.WageFile),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(db config.DatabaseConfig) (closableStore, error) {
	if db.Driver == config.DriverPostgres {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := postgres.Connect(ctx, postgres.Options{
			URL:             db.URL,
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			MaxConnIdleTime: db.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := sqlite.New(db.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
