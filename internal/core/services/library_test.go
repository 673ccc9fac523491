package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/index/tfidf"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// newTestLibrary writes files into a temp dir and returns a library over
// it, backed by an in-memory cache.
func newTestLibrary(t *testing.T, files map[string]string) (*Library, string) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)

	cache := NewContentCache(memory.NewBlobStore())
	lib := NewLibrary(dir, newTextStore(), NewIndexCache(cache, tfidf.New()))
	return lib, dir
}

func TestLibrary_CurrentBeforeRefresh(t *testing.T) {
	lib, dir := newTestLibrary(t, nil)

	assert.Nil(t, lib.Current())
	assert.Nil(t, lib.Documents())
	assert.Equal(t, dir, lib.Dir())
}

func TestLibrary_RefreshPublishesSnapshot(t *testing.T) {
	lib, dir := newTestLibrary(t, map[string]string{
		"a.txt": "alpha beta",
		"b.txt": "gamma delta",
	})
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	lib.now = func() time.Time { return fixed }

	snap, err := lib.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, dir, snap.Directory)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, fixed, snap.LoadedAt)
	assert.NoError(t, snap.IndexErr)
	assert.False(t, snap.IndexCached)
	assert.Equal(t, CorpusFingerprint(snap.Documents), snap.IndexFingerprint)

	assert.Same(t, snap, lib.Current())
	assert.Len(t, lib.Documents(), 2)
	require.NotNil(t, lib.published().index)
	assert.Equal(t, 2, lib.published().index.Len())
}

func TestLibrary_SecondRefreshUsesIndexCache(t *testing.T) {
	lib, _ := newTestLibrary(t, map[string]string{"a.txt": "alpha beta"})
	ctx := context.Background()

	first, err := lib.Refresh(ctx)
	require.NoError(t, err)
	second, err := lib.Prewarm(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.IndexCached)
	assert.Equal(t, first.IndexFingerprint, second.IndexFingerprint)
}

func TestLibrary_EmptyDirectoryRecordsIndexError(t *testing.T) {
	lib, _ := newTestLibrary(t, nil)

	snap, err := lib.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
	assert.ErrorIs(t, snap.IndexErr, domain.ErrEmptyCorpus)
	assert.Nil(t, lib.published().index)
}

func TestLibrary_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	lib, dir := newTestLibrary(t, map[string]string{"a.txt": "alpha"})
	ctx := context.Background()

	before, err := lib.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	snap, err := lib.Refresh(ctx)
	assert.Error(t, err)
	assert.Nil(t, snap)
	assert.Same(t, before, lib.Current())
}

func TestLibrary_CancelledRefreshKeepsPreviousSnapshot(t *testing.T) {
	lib, _ := newTestLibrary(t, map[string]string{"a.txt": "alpha"})

	before, err := lib.Refresh(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lib.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, before, lib.Current())
}

func TestLibrary_RefreshPicksUpChanges(t *testing.T) {
	lib, dir := newTestLibrary(t, map[string]string{"a.txt": "alpha"})
	ctx := context.Background()

	_, err := lib.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta"), 0o600))
	snap, err := lib.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.False(t, snap.IndexCached)
}

func TestLibrary_ConcurrentReadersDuringRefresh(t *testing.T) {
	lib, _ := newTestLibrary(t, map[string]string{
		"a.txt": "Python is used for web development.",
		"b.txt": "Machine learning is AI.",
	})
	ctx := context.Background()
	_, err := lib.Refresh(ctx)
	require.NoError(t, err)

	retriever := NewHybridRetriever(lib)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = lib.Refresh(ctx)
		}()
		go func() {
			defer wg.Done()
			for range 10 {
				c := lib.published()
				// A published corpus always has an index aligned with it.
				if assert.NotNil(t, c) && assert.NotNil(t, c.index) {
					assert.Equal(t, c.snapshot.Len(), c.index.Len())
				}
				assert.NotEmpty(t, retriever.Retrieve(ctx, "python", 2))
			}
		}()
	}
	wg.Wait()
}
