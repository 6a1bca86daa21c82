package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/instrument-catalog/internal/application"
	"github.com/jmanzanog/instrument-catalog/internal/domain"
	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/config"
	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/persistence/file"
	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/instrument-catalog/internal/infrastructure/persistence/sqldb"
	httpHandler "github.com/jmanzanog/instrument-catalog/internal/interfaces/http"
	"github.com/joho/godotenv"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

// initializeStore builds the catalog store for the configured driver. The
// returned closer releases the database connection, if any.
func initializeStore(ctx context.Context, cfg *config.Config) (domain.CatalogStore, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverFile:
		return file.NewCatalogStore(cfg.CatalogFile), nopCloser{}, nil
	case config.StoreDriverMemory:
		return memory.NewCatalogStore(), nopCloser{}, nil
	case config.StoreDriverPostgres, config.StoreDriverOracle:
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := sqldb.Open(ctx, cfg.StoreDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		return sqldb.NewCatalogStore(db, cfg.DocumentName), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, catalogService httpHandler.CatalogService) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(catalogService)

	var middleware []gin.HandlerFunc
	if cfg.AuthEnabled {
		middleware = append(middleware, httpHandler.SessionGuard(cfg.SessionCookieName))
	}
	httpHandler.SetupRoutes(router, handler, middleware...)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

func serviceOptions(cfg *config.Config) []application.Option {
	var opts []application.Option
	if cfg.StrictCodeFormat {
		opts = append(opts, application.WithStrictCodeFormat())
	}
	return opts
}

// App wraps the application components for easier testing
type App struct {
	Server *http.Server
	Store  io.Closer
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("store close error: %w", err)
	}

	return nil
}

// run contains the main application logic without os.Exit calls
// This makes it testeable
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closer, err := initializeStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store initialization failed: %w", err)
	}
	slog.Info("Using catalog store", "driver", cfg.StoreDriver)

	catalogService := application.NewCatalogService(store, serviceOptions(cfg)...)
	server := buildServer(cfg, catalogService)

	app := &App{
		Server: server,
		Store:  closer,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort, "auth", cfg.AuthEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		_ = closer.Close()
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
