package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// indexKeyLen is the number of fingerprint characters used in index keys.
const indexKeyLen = 16

// BuiltIndex is the outcome of an index build.
type BuiltIndex struct {
	// Index answers similarity queries, aligned with the input documents.
	Index driven.RelevanceIndex

	// Fingerprint covers every document's content, in order.
	Fingerprint string

	// Cached is true when the index was decoded from the cache.
	Cached bool
}

// IndexCache wraps index building with a content-addressed cache keyed
// by the corpus fingerprint.
type IndexCache struct {
	cache   *ContentCache
	builder driven.IndexBuilder
}

// NewIndexCache creates an index cache.
func NewIndexCache(cache *ContentCache, builder driven.IndexBuilder) *IndexCache {
	return &IndexCache{
		cache:   cache,
		builder: builder,
	}
}

// CorpusFingerprint hashes the contents of docs in collection order.
func CorpusFingerprint(docs []domain.Document) string {
	parts := make([]string, len(docs))
	for i := range docs {
		parts[i] = docs[i].Content
	}
	return domain.FingerprintStrings(parts)
}

// Key returns the cache key for a corpus fingerprint.
func (c *IndexCache) Key(fingerprint string) string {
	if len(fingerprint) > indexKeyLen {
		fingerprint = fingerprint[:indexKeyLen]
	}
	return IndexKeyPrefix + fingerprint
}

// Build returns an index for docs, reusing a cached one when the corpus
// is unchanged. Returns domain.ErrEmptyCorpus for an empty collection.
// A failure to persist the new index is logged, not returned.
func (c *IndexCache) Build(ctx context.Context, docs []domain.Document) (*BuiltIndex, error) {
	logger.Section("Index Build")
	if len(docs) == 0 {
		logger.Warn("No documents to index")
		return nil, domain.ErrEmptyCorpus
	}

	fingerprint := CorpusFingerprint(docs)
	key := c.Key(fingerprint)
	logger.Debug("Corpus fingerprint: %s (%d documents)", fingerprint, len(docs))

	if payload, ok := c.cache.Get(ctx, key, fingerprint); ok {
		index, err := c.builder.Decode(payload)
		switch {
		case err != nil:
			logger.Warn("Cached index %s is unreadable, rebuilding: %v", key, err)
		case index.Len() != len(docs):
			logger.Warn("Cached index %s has %d documents, want %d, rebuilding", key, index.Len(), len(docs))
		default:
			logger.Info("Loaded cached index %s for %d documents", key, len(docs))
			return &BuiltIndex{Index: index, Fingerprint: fingerprint, Cached: true}, nil
		}
	}

	contents := make([]string, len(docs))
	for i := range docs {
		contents[i] = docs[i].Content
	}

	index, err := c.builder.Build(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	logger.Info("Built index for %d documents", len(docs))

	payload, err := index.Encode()
	if err != nil {
		logger.Warn("Could not encode index for caching: %v", err)
	} else if err := c.cache.Put(ctx, key, fingerprint, payload); err != nil {
		logger.Warn("Could not cache index: %v", err)
	}

	return &BuiltIndex{Index: index, Fingerprint: fingerprint}, nil
}
