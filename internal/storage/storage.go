// Package storage holds the durable key/value stores used for cart snapshots.
package storage

import (
	"context"
	"errors"
)

// DefaultCartKey is the key the cart snapshot is stored under. Session
// scoped keys append ":" and the session id.
const DefaultCartKey = "family-store-cart"

// ErrNotFound is returned by Load when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore persists opaque snapshots under a string key.
type SnapshotStore interface {
	// Load returns the stored snapshot or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the snapshot stored under key.
	Save(ctx context.Context, key string, data []byte) error
}

// CartKey returns the snapshot key for a session.
func CartKey(sessionID string) string {
	if sessionID == "" {
		return DefaultCartKey
	}
	return DefaultCartKey + ":" + sessionID
}
