package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"emportal/internal/platform/config"
)

func Connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Migrate applies the portal's schema. The portal owns a single table;
// everything else lives behind the REST backend.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS portal_sessions (
      id            TEXT PRIMARY KEY,
      email         TEXT NOT NULL,
      role          TEXT NOT NULL,
      token         BYTEA NOT NULL,
      token_expires TIMESTAMPTZ,
      created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
      expires_at    TIMESTAMPTZ NOT NULL
    );
    CREATE INDEX IF NOT EXISTS portal_sessions_expires_at_idx
      ON portal_sessions (expires_at);
  `)
	return err
}
