package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS collections (
    key TEXT PRIMARY KEY,
    payload JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresBackend stores collections as JSONB rows in a single table.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend wraps db; call Migrate before first use.
func NewPostgresBackend(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Migrate creates the collections table when missing.
func (p *PostgresBackend) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Name() string { return "postgres" }

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	if err := p.db.GetContext(ctx, &payload, `SELECT payload FROM collections WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select collection %s: %w", key, err)
	}
	return payload, true, nil
}

func (p *PostgresBackend) Put(ctx context.Context, key string, payload []byte) error {
	const query = `INSERT INTO collections (key, payload, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := p.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert collection %s: %w", key, err)
	}
	return nil
}
