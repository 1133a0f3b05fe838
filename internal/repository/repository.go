package repository

import (
	"context"
	"time"
)

// CartSnapshot is one stored cart snapshot row.
type CartSnapshot struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

// CartRepository defines the interface for cart snapshot data access operations.
type CartRepository interface {
	// Load retrieves the snapshot payload stored under key.
	// Returns storage.ErrNotFound when no row exists.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save upserts the snapshot payload for key.
	Save(ctx context.Context, key string, data []byte) error

	// Get retrieves the full snapshot row, or nil when absent.
	Get(ctx context.Context, key string) (*CartSnapshot, error)

	// Delete removes the snapshot for key. Missing rows are not an error.
	Delete(ctx context.Context, key string) error
}
