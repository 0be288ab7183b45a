// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Warehouse WarehouseConfig
	Upload    UploadConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" default:"8000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// WarehouseConfig holds settings for the table store that receives ingested data.
type WarehouseConfig struct {
	// Driver selects the warehouse engine: postgres, duckdb or memory (default: postgres)
	Driver string `env:"WAREHOUSE_DRIVER" default:"postgres"`

	// URL is the connection string. For postgres a libpq URL, for duckdb a
	// database file path (empty means an in-process database).
	// Falls back to DATABASE_URL, then DB_URL, for compatibility.
	URL string `env:"WAREHOUSE_URL" envAlt:"DATABASE_URL,DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"WAREHOUSE_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"WAREHOUSE_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"WAREHOUSE_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"WAREHOUSE_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoCreate creates missing warehouse tables on startup (default: true)
	AutoCreate bool `env:"WAREHOUSE_AUTO_CREATE" default:"true"`
}

// UploadConfig holds CSV ingestion settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel ingestions (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an ingestion slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// CORSConfig holds cross-origin settings for the browser frontend.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list of origins (default: http://localhost:3000)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// AllowCredentials controls Access-Control-Allow-Credentials (default: true)
	AllowCredentials bool `env:"CORS_ALLOW_CREDENTIALS" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
