package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ExtractorRegistry implements the interface.
var _ driven.ExtractorRegistry = (*ExtractorRegistry)(nil)

// ExtractorRegistry dispatches extraction by file extension.
type ExtractorRegistry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewExtractorRegistry creates a registry holding extractors.
func NewExtractorRegistry(extractors ...driven.Extractor) *ExtractorRegistry {
	r := &ExtractorRegistry{
		extractors: make(map[string]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its extensions.
func (r *ExtractorRegistry) Register(extractor driven.Extractor) {
	if extractor == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.Extensions() {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// For returns the extractor registered for ext.
func (r *ExtractorRegistry) For(ext string) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.extractors[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, ext)
	}
	return e, nil
}

// Extensions returns the registered extensions, sorted.
func (r *ExtractorRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
