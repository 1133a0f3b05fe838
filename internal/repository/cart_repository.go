package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"family-store/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart snapshot repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Load retrieves the snapshot payload stored under key.
func (r *cartRepository) Load(ctx context.Context, key string) ([]byte, error) {
	snapshot, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, storage.ErrNotFound
	}
	return snapshot.Payload, nil
}

// Get retrieves the full snapshot row.
func (r *cartRepository) Get(ctx context.Context, key string) (*CartSnapshot, error) {
	query := `
		SELECT key, payload, updated_at
		FROM cart_snapshots
		WHERE key = $1
	`

	var snapshot CartSnapshot
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&snapshot.Key,
		&snapshot.Payload,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("key", key).Msg("cart snapshot not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to query cart snapshot")
		return nil, fmt.Errorf("failed to query cart snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save upserts the snapshot payload for key.
func (r *cartRepository) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO cart_snapshots (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query, key, string(data), time.Now())
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("key", key).
			Int("bytes", len(data)).
			Msg("failed to save cart snapshot")
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}

	r.logger.Debug().
		Str("key", key).
		Int("bytes", len(data)).
		Msg("cart snapshot saved")

	return nil
}

// Delete removes the snapshot for key.
func (r *cartRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_snapshots WHERE key = $1`, key)
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to delete cart snapshot")
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}
