// Package connect opens the warehouse selected by configuration.
package connect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walis/inventory-uploader/internal/config"
	"github.com/walis/inventory-uploader/internal/warehouse"
	"github.com/walis/inventory-uploader/internal/warehouse/duckdb"
	"github.com/walis/inventory-uploader/internal/warehouse/postgres"
)

// Open connects the configured warehouse and, when AutoCreate is set,
// creates its tables. The returned close function releases the connection.
func Open(ctx context.Context, cfg config.WarehouseConfig) (warehouse.Warehouse, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.URL, func(pc *pgxpool.Config) {
			pc.MaxConns = int32(cfg.MaxConns)
			pc.MinConns = int32(cfg.MinConns)
			pc.MaxConnLifetime = cfg.MaxConnLifetime
			pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		})
		if err != nil {
			return nil, nil, err
		}
		store := postgres.New(pool)
		if cfg.AutoCreate {
			if err := store.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		slog.Info("warehouse connected", "driver", config.DriverPostgres, "max_conns", cfg.MaxConns)
		return store, pool.Close, nil

	case config.DriverDuckDB:
		store, err := duckdb.Open(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoCreate {
			if err := store.EnsureSchema(ctx); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		path := cfg.URL
		if path == "" {
			path = ":memory:"
		}
		slog.Info("warehouse connected", "driver", config.DriverDuckDB, "path", path)
		return store, func() { store.Close() }, nil

	case config.DriverMemory:
		slog.Warn("using in-memory warehouse; data is lost on exit")
		return warehouse.NewMemory(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown warehouse driver %q", cfg.Driver)
	}
}
