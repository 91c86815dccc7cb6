package store

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-admin-dashboard/pkg/cache"
	"github.com/noah-isme/sma-admin-dashboard/pkg/config"
	"github.com/noah-isme/sma-admin-dashboard/pkg/database"
)

// Opened is a backend plus the cleanup for whatever connection it holds.
type Opened struct {
	Backend Backend
	Close   func() error
}

// Open builds the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (*Opened, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case config.StoreMemory:
		return &Opened{Backend: NewMemoryBackend(), Close: noop}, nil
	case "", config.StoreFile:
		backend, err := NewFileBackend(cfg.Store.FileDir)
		if err != nil {
			return nil, err
		}
		return &Opened{Backend: backend, Close: noop}, nil
	case config.StoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Opened{Backend: NewRedisBackend(client), Close: client.Close}, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		backend := NewPostgresBackend(db)
		if err := backend.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Opened{Backend: backend, Close: db.Close}, nil
	case config.StoreSQLite:
		db, err := database.NewSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		backend, err := NewSQLiteBackend(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Opened{Backend: backend, Close: db.Close}, nil
	case config.StoreS3:
		backend, err := NewS3Backend(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return &Opened{Backend: backend, Close: noop}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
