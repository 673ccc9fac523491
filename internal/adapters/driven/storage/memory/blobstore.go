package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
// Entries are copied in and out so callers cannot mutate stored state.
type BlobStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		entries: make(map[string]domain.CacheEntry),
	}
}

// Get retrieves an entry by key.
func (s *BlobStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyEntry(entry)
	return &out, nil
}

// Put stores or replaces an entry.
func (s *BlobStore) Put(_ context.Context, entry *domain.CacheEntry) error {
	if entry == nil || entry.Key == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = copyEntry(*entry)
	return nil
}

// Delete removes an entry.
func (s *BlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Keys returns all keys, sorted.
func (s *BlobStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.entries)), nil
}

// Close is a no-op.
func (s *BlobStore) Close() error {
	return nil
}

// Len returns the number of stored entries.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func copyEntry(e domain.CacheEntry) domain.CacheEntry {
	e.Payload = slices.Clone(e.Payload)
	e.Meta = maps.Clone(e.Meta)
	return e
}
