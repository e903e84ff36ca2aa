// Package backend picks the ledger implementation named by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"parishfinance/internal/config"
	"parishfinance/internal/ports"
	"parishfinance/internal/storage/memory"
	"parishfinance/internal/storage/sqlite"
)

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = config.BackendMemory
	SQLiteBackend BackendType = config.BackendSQLite
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type      BackendType
	SQLiteDSN string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:      backendType,
		SQLiteDSN: appConfig.SQLiteDSN,
	}, nil
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Result contains the ledger reader and an optional cleanup function.
type Result struct {
	Reader  ports.LedgerReader
	Cleanup CleanupFunc
}

// Ping reports readiness; backends without a connection are always ready.
func (r *Result) Ping(ctx context.Context) error {
	if p, ok := r.Reader.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs Cleanup if there is one.
func (r *Result) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Create builds the ledger reader for cfg.
func Create(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return &Result{Reader: memory.NewSeeded()}, nil

	case SQLiteBackend:
		store, err := sqlite.Open(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "dsn", cfg.SQLiteDSN)
		return &Result{Reader: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
