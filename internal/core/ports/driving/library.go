package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// LibraryService manages the published document corpus.
type LibraryService interface {
	// Dir returns the document directory the library loads from.
	Dir() string

	// Refresh reloads every document, rebuilds the index and publishes
	// the result atomically. On failure the previous snapshot stays live.
	Refresh(ctx context.Context) (*domain.Snapshot, error)

	// Prewarm runs a refresh to populate the extraction and index caches.
	Prewarm(ctx context.Context) (*domain.Snapshot, error)

	// Current returns the published snapshot, or nil before the first refresh.
	Current() *domain.Snapshot

	// Documents returns the documents of the published snapshot.
	Documents() []domain.Document
}

// CacheService inspects and clears cached extraction and index entries.
type CacheService interface {
	// Keys lists cache keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Clear removes entries with the given prefix and returns how many
	// were removed.
	Clear(ctx context.Context, prefix string) (int, error)
}
