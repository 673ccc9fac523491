package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure ContentCache implements the interface.
var _ driving.CacheService = (*ContentCache)(nil)

// Cache key namespaces.
const (
	ExtractionKeyPrefix = "extraction/"
	IndexKeyPrefix      = "index/"
)

// ContentCache stores payloads keyed by name and validated by the
// fingerprint of the inputs that produced them. A stored payload is only
// returned while the caller's current fingerprint matches.
type ContentCache struct {
	store driven.BlobStore
	now   func() time.Time
}

// NewContentCache creates a cache backed by store.
func NewContentCache(store driven.BlobStore) *ContentCache {
	return &ContentCache{
		store: store,
		now:   time.Now,
	}
}

// Get returns the payload for key if its stored fingerprint equals
// fingerprint. Missing, unreadable and stale entries all report a miss.
func (c *ContentCache) Get(ctx context.Context, key, fingerprint string) ([]byte, bool) {
	entry, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("Cache miss: %s (absent)", key)
		return nil, false
	case errors.Is(err, domain.ErrCacheCorrupt):
		logger.Warn("Cache miss: %s (corrupt entry)", key)
		return nil, false
	case err != nil:
		logger.Warn("Cache miss: %s (read error: %v)", key, err)
		return nil, false
	}

	if entry.Fingerprint != fingerprint {
		logger.Debug("Cache miss: %s (fingerprint changed)", key)
		return nil, false
	}

	logger.Debug("Cache hit: %s", key)
	return entry.Payload, true
}

// Put stores payload under key, replacing any prior entry.
// Storage failures are returned as *domain.WriteError.
func (c *ContentCache) Put(ctx context.Context, key, fingerprint string, payload []byte) error {
	return c.PutWithMeta(ctx, key, fingerprint, payload, nil)
}

// PutWithMeta is Put with advisory metadata attached to the entry.
func (c *ContentCache) PutWithMeta(
	ctx context.Context, key, fingerprint string, payload []byte, meta map[string]string,
) error {
	if key == "" || fingerprint == "" {
		return &domain.WriteError{Key: key, Err: domain.ErrInvalidInput}
	}

	entry := &domain.CacheEntry{
		Key:         key,
		Fingerprint: fingerprint,
		Payload:     payload,
		CreatedAt:   c.now().UTC(),
		Meta:        meta,
	}
	if err := c.store.Put(ctx, entry); err != nil {
		return &domain.WriteError{Key: key, Err: err}
	}
	return nil
}

// Delete removes the entry for key.
func (c *ContentCache) Delete(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix.
func (c *ContentCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	all, err := c.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cache keys: %w", err)
	}

	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Clear removes every entry whose key starts with prefix.
func (c *ContentCache) Clear(ctx context.Context, prefix string) (int, error) {
	keys, err := c.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, k := range keys {
		if err := c.Delete(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}
	logger.Info("Cleared %d cache entries with prefix %q", removed, prefix)
	return removed, nil
}
