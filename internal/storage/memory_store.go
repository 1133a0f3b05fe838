package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local SnapshotStore. It also counts writes, which
// tests use to check that each cart mutation produces exactly one save.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	saves  int
	LoadFn func(key string) error
	SaveFn func(key string, data []byte) error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load returns a copy of the stored value. Like the network drivers it fails
// on a cancelled context.
func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadFn != nil {
		if err := s.LoadFn(key); err != nil {
			return nil, err
		}
	}

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of data unless SaveFn rejects it.
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
	if s.SaveFn != nil {
		if err := s.SaveFn(key, data); err != nil {
			return err
		}
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Put seeds a raw value without counting it as a save.
func (s *MemoryStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// Saves returns the number of Save calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
