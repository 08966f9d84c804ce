package keychain

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("keychain entry not found")

// Keychain is an opaque byte store with at-least confidentiality guarantees.
// Last-write-wins; no transactional guarantees are assumed.
type Keychain interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryKeychain is a process-local [Keychain]. It is the default backing in
// tests and single-process hosts.
type MemoryKeychain struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryKeychain creates an empty in-memory keychain.
func NewMemoryKeychain() *MemoryKeychain {
	return &MemoryKeychain{entries: make(map[string][]byte)}
}

// Get returns a copy of the stored value, or [ErrNotFound].
func (k *MemoryKeychain) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	value, ok := k.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key.
func (k *MemoryKeychain) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.entries[key] = stored
	return nil
}

// Remove deletes the entry for key. Removing a missing key is not an error.
func (k *MemoryKeychain) Remove(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	return nil
}
