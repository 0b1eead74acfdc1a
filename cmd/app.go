package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier/db"
	"github.com/atelierhq/atelier/internal/chat"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/storage"
)

// app bundles the storage-backed collaborators a command needs.
type app struct {
	ChatStore     chat.Store
	SettingsStore storage.Store
	Pool          *pgxpool.Pool // nil unless the postgres backend is active
}

// Close releases the database pool if one was opened.
func (a *app) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// setup opens the configured storage backend and builds the chat store on
// top of it. The file backend also gets a file-backed settings store; the
// other backends keep settings in memory.
func setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		if err := db.Migrate(cfg.PostgresURL()); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
		if err != nil {
			return nil, fmt.Errorf("creating connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		store, err := chat.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("initializing chat store: %w", err)
		}
		return &app{ChatStore: store, Pool: pool}, nil

	case config.StorageFile:
		if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath()), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}

		snapshots, err := storage.NewFileStore(cfg.SnapshotPath())
		if err != nil {
			return nil, fmt.Errorf("opening snapshot store: %w", err)
		}
		settings, err := storage.NewFileStore(cfg.SettingsPath())
		if err != nil {
			return nil, fmt.Errorf("opening settings store: %w", err)
		}
		return &app{
			ChatStore:     chat.NewMemoryStore(snapshots, logger),
			SettingsStore: settings,
		}, nil

	case config.StorageMemory:
		return &app{
			ChatStore:     chat.NewMemoryStore(storage.NewMemoryStore(), logger),
			SettingsStore: storage.NewMemoryStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
