package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// BlobStore persists cache entries by key.
// Entries are independent: removing one never affects another.
type BlobStore interface {
	// Get returns the entry stored under key.
	// Returns domain.ErrNotFound if no entry exists and
	// domain.ErrCacheCorrupt if the stored bytes cannot be decoded.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Put stores an entry, replacing any prior entry with the same key.
	// A concurrent reader sees either the old or the new entry, never a mix.
	Put(ctx context.Context, entry *domain.CacheEntry) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys in lexicographic order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
