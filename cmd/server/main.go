package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/walis/inventory-uploader/internal/config"
	"github.com/walis/inventory-uploader/internal/core"
	_ "github.com/walis/inventory-uploader/internal/core/tables" // Register inventory and orders
	"github.com/walis/inventory-uploader/internal/logging"
	"github.com/walis/inventory-uploader/internal/warehouse/connect"
	"github.com/walis/inventory-uploader/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"warehouse_driver", cfg.Warehouse.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"cors_origins", cfg.CORS.AllowedOrigins,
	)

	ctx := context.Background()
	wh, closeWarehouse, err := connect.Open(ctx, cfg.Warehouse)
	if err != nil {
		slog.Error("failed to open warehouse", "error", err)
		os.Exit(1)
	}
	defer closeWarehouse()

	service := core.NewService(wh, core.Options{
		MaxConcurrentIngests: cfg.Upload.MaxConcurrent,
		MaxWait:              cfg.Upload.MaxWaitTime,
	})

	for _, info := range service.ListTables() {
		slog.Debug("table registered", "key", info.Key, "table", info.Table)
	}
	slog.Info("tables registered", "count", core.TableCount())

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active ingests to complete (with timeout)
		if active := service.Limiter().ActiveCount(); active > 0 {
			slog.Info("waiting for ingests to complete", "active", active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("ingests did not complete in time", "error", err)
			} else {
				slog.Info("all ingests completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		closeWarehouse()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
