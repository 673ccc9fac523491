package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Library implements the interface.
var _ driving.LibraryService = (*Library)(nil)

// corpus pairs a published snapshot with its index.
// Both are immutable once published.
type corpus struct {
	snapshot *domain.Snapshot
	index    driven.RelevanceIndex
}

// Library owns the published corpus. Refreshes are exclusive and
// publish on completion; readers keep the previous corpus until then.
type Library struct {
	dir     string
	store   *DocumentStore
	indexes *IndexCache

	refreshMu sync.Mutex
	current   atomic.Pointer[corpus]

	now func() time.Time
}

// NewLibrary creates a library for the documents in dir.
func NewLibrary(dir string, store *DocumentStore, indexes *IndexCache) *Library {
	return &Library{
		dir:     dir,
		store:   store,
		indexes: indexes,
		now:     time.Now,
	}
}

// Dir returns the document directory.
func (l *Library) Dir() string {
	return l.dir
}

// Refresh reloads all documents and rebuilds the index, then publishes
// both together. An empty corpus is published with IndexErr set.
// If loading fails the previous snapshot stays live.
func (l *Library) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	docs, err := l.store.Refresh(ctx, l.dir)
	if err != nil {
		logger.Warn("Refresh aborted, keeping previous snapshot: %v", err)
		return nil, err
	}

	snap := &domain.Snapshot{
		ID:        uuid.NewString(),
		Directory: l.dir,
		Documents: docs,
	}

	var index driven.RelevanceIndex
	built, err := l.indexes.Build(ctx, docs)
	switch {
	case err == nil:
		index = built.Index
		snap.IndexFingerprint = built.Fingerprint
		snap.IndexCached = built.Cached
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Refresh aborted, keeping previous snapshot: %v", err)
		return nil, err
	default:
		if !errors.Is(err, domain.ErrEmptyCorpus) {
			logger.Warn("Index build failed: %v", err)
		}
		snap.IndexErr = err
	}

	snap.LoadedAt = l.now()
	l.current.Store(&corpus{snapshot: snap, index: index})
	logger.Info("Published snapshot %s with %d documents", snap.ID, len(docs))
	return snap, nil
}

// Prewarm populates the extraction and index caches by running a refresh.
func (l *Library) Prewarm(ctx context.Context) (*domain.Snapshot, error) {
	logger.Section("Cache Prewarm")
	return l.Refresh(ctx)
}

// Current returns the published snapshot, or nil before the first refresh.
func (l *Library) Current() *domain.Snapshot {
	c := l.current.Load()
	if c == nil {
		return nil
	}
	return c.snapshot
}

// Documents returns the documents of the published snapshot.
func (l *Library) Documents() []domain.Document {
	snap := l.Current()
	if snap == nil {
		return nil
	}
	return snap.Documents
}

// published returns the published corpus, or nil.
func (l *Library) published() *corpus {
	return l.current.Load()
}
