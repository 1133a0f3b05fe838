package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// cartSchema creates the snapshot table. Payload is validated as JSON by
// PostgreSQL on write.
const cartSchema = `
	CREATE TABLE IF NOT EXISTS cart_snapshots (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// EnsureSchema creates the tables used by the repositories if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, cartSchema); err != nil {
		return fmt.Errorf("failed to create cart schema: %w", err)
	}
	return nil
}
