package services

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ExtractionCache caches extracted text per source file, validated by
// the fingerprint of the file's bytes.
type ExtractionCache struct {
	cache *ContentCache
}

// NewExtractionCache creates an extraction cache on top of cache.
func NewExtractionCache(cache *ContentCache) *ExtractionCache {
	return &ExtractionCache{cache: cache}
}

// Key returns the cache key for a source path.
func (e *ExtractionCache) Key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return ExtractionKeyPrefix + filepath.ToSlash(filepath.Clean(path))
}

// Lookup returns the cached text for the file at path with the given
// content, if the content has not changed since it was stored.
func (e *ExtractionCache) Lookup(ctx context.Context, path string, content []byte) (string, bool) {
	payload, ok := e.cache.Get(ctx, e.Key(path), domain.Fingerprint(content))
	if !ok {
		return "", false
	}
	return string(payload), true
}

// Store caches text for the file. Blank text is never stored.
func (e *ExtractionCache) Store(ctx context.Context, path string, content []byte, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	meta := map[string]string{
		"source_size": strconv.Itoa(len(content)),
	}
	return e.cache.PutWithMeta(ctx, e.Key(path), domain.Fingerprint(content), []byte(text), meta)
}

// Wrap returns an OCR engine that consults the cache before running
// engine and stores only successful, non-empty results.
func (e *ExtractionCache) Wrap(engine driven.OCREngine) driven.OCREngine {
	return &cachedOCR{cache: e, engine: engine}
}

// cachedOCR decorates an OCR engine with the extraction cache.
type cachedOCR struct {
	cache  *ExtractionCache
	engine driven.OCREngine
}

// Recognize implements driven.OCREngine.
func (c *cachedOCR) Recognize(ctx context.Context, raw *domain.RawFile) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	if text, ok := c.cache.Lookup(ctx, raw.Path, raw.Content); ok {
		logger.Info("Using cached OCR text for %s", raw.Name())
		return text, nil
	}

	text, err := c.engine.Recognize(ctx, raw)
	if err != nil {
		return "", err
	}

	if err := c.cache.Store(ctx, raw.Path, raw.Content, text); err != nil {
		logger.Warn("Could not cache OCR text for %s: %v", raw.Name(), err)
	}
	return text, nil
}
