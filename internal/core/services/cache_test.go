package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// failingBlobStore returns a fixed error from every operation.
type failingBlobStore struct {
	getErr error
	putErr error
}

func (s *failingBlobStore) Get(context.Context, string) (*domain.CacheEntry, error) {
	return nil, s.getErr
}

func (s *failingBlobStore) Put(context.Context, *domain.CacheEntry) error {
	return s.putErr
}

func (s *failingBlobStore) Delete(context.Context, string) error {
	return nil
}

func (s *failingBlobStore) Keys(context.Context) ([]string, error) {
	return nil, s.getErr
}

func (s *failingBlobStore) Close() error {
	return nil
}

// countingOCR records how often it is asked to recognise a file.
type countingOCR struct {
	calls atomic.Int32
	text  string
	err   error
}

func (o *countingOCR) Recognize(context.Context, *domain.RawFile) (string, error) {
	o.calls.Add(1)
	return o.text, o.err
}

func TestFingerprint_Deterministic(t *testing.T) {
	data := []byte("The quick brown fox")
	first := domain.Fingerprint(data)

	for range 5 {
		assert.Equal(t, first, domain.Fingerprint([]byte("The quick brown fox")))
	}
	assert.NotEqual(t, first, domain.Fingerprint([]byte("The quick brown fox.")))
	assert.Len(t, first, 64)
}

func TestContentCache_GetMissing(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())

	payload, ok := cache.Get(context.Background(), "extraction/a.pdf", "f1")
	assert.False(t, ok)
	assert.Nil(t, payload)
}

func TestContentCache_PutThenGet(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "extraction/a.pdf", "f1", []byte("hello")))

	payload, ok := cache.Get(ctx, "extraction/a.pdf", "f1")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), payload)
}

func TestContentCache_StaleFingerprintMisses(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "extraction/a.pdf", "f1", []byte("old")))

	_, ok := cache.Get(ctx, "extraction/a.pdf", "f2")
	assert.False(t, ok, "a changed fingerprint must never return the stale payload")
}

func TestContentCache_PutReplaces(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", "f1", []byte("one")))
	require.NoError(t, cache.Put(ctx, "k", "f2", []byte("two")))

	_, ok := cache.Get(ctx, "k", "f1")
	assert.False(t, ok)
	payload, ok := cache.Get(ctx, "k", "f2")
	require.True(t, ok)
	assert.Equal(t, []byte("two"), payload)
}

func TestContentCache_ReadErrorsAreMisses(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"corrupt", domain.ErrCacheCorrupt},
		{"wrapped corrupt", errors.Join(errors.New("bad json"), domain.ErrCacheCorrupt)},
		{"io error", errors.New("disk on fire")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewContentCache(&failingBlobStore{getErr: tt.err})
			payload, ok := cache.Get(context.Background(), "k", "f")
			assert.False(t, ok)
			assert.Nil(t, payload)
		})
	}
}

func TestContentCache_PutFailureIsWriteError(t *testing.T) {
	cause := errors.New("read-only file system")
	cache := NewContentCache(&failingBlobStore{putErr: cause})

	err := cache.Put(context.Background(), "k", "f", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWrite)
	assert.ErrorIs(t, err, cause)

	var writeErr *domain.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "k", writeErr.Key)
}

func TestContentCache_PutRejectsEmptyKeyOrFingerprint(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())
	ctx := context.Background()

	assert.ErrorIs(t, cache.Put(ctx, "", "f", nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, cache.Put(ctx, "k", "", nil), domain.ErrInvalidInput)
}

func TestContentCache_KeysAndClearByPrefix(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, ExtractionKeyPrefix+"/d/a.pdf", "f", []byte("a")))
	require.NoError(t, cache.Put(ctx, ExtractionKeyPrefix+"/d/b.pdf", "f", []byte("b")))
	require.NoError(t, cache.Put(ctx, IndexKeyPrefix+"0123456789abcdef", "f", []byte("i")))

	keys, err := cache.Keys(ctx, ExtractionKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"extraction//d/a.pdf", "extraction//d/b.pdf"}, keys)

	removed, err := cache.Clear(ctx, IndexKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := cache.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2, "clearing one namespace leaves the other intact")

	_, ok := cache.Get(ctx, ExtractionKeyPrefix+"/d/a.pdf", "f")
	assert.True(t, ok)
}

func TestContentCache_KeysError(t *testing.T) {
	cache := NewContentCache(&failingBlobStore{getErr: errors.New("boom")})

	_, err := cache.Keys(context.Background(), "")
	assert.Error(t, err)

	removed, err := cache.Clear(context.Background(), "")
	assert.Error(t, err)
	assert.Zero(t, removed)
}

func TestExtractionCache_KeyIsAbsolute(t *testing.T) {
	ec := NewExtractionCache(NewContentCache(memory.NewBlobStore()))

	key := ec.Key("docs/../docs/a.pdf")
	assert.True(t, len(key) > len(ExtractionKeyPrefix))
	assert.Contains(t, key, "docs/a.pdf")
	assert.NotContains(t, key, "..")
	assert.Equal(t, key, ec.Key("docs/a.pdf"))
}

func TestExtractionCache_LookupAndStore(t *testing.T) {
	ec := NewExtractionCache(NewContentCache(memory.NewBlobStore()))
	ctx := context.Background()
	content := []byte("%PDF-1.4 scanned")

	_, ok := ec.Lookup(ctx, "/docs/a.pdf", content)
	assert.False(t, ok)

	require.NoError(t, ec.Store(ctx, "/docs/a.pdf", content, "recognised"))

	text, ok := ec.Lookup(ctx, "/docs/a.pdf", content)
	require.True(t, ok)
	assert.Equal(t, "recognised", text)

	_, ok = ec.Lookup(ctx, "/docs/a.pdf", []byte("%PDF-1.4 changed"))
	assert.False(t, ok)
}

func TestExtractionCache_BlankTextNotStored(t *testing.T) {
	store := memory.NewBlobStore()
	ec := NewExtractionCache(NewContentCache(store))

	require.NoError(t, ec.Store(context.Background(), "/docs/a.pdf", []byte("x"), "  \n\t"))

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestExtractionCache_WrapReusesUnchangedFile(t *testing.T) {
	store := memory.NewBlobStore()
	ec := NewExtractionCache(NewContentCache(store))
	engine := &countingOCR{text: "scanned text"}
	ocr := ec.Wrap(engine)
	ctx := context.Background()

	raw := &domain.RawFile{Path: "/docs/doc.pdf", Content: []byte("bytes v1")}

	text, err := ocr.Recognize(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "scanned text", text)

	text, err = ocr.Recognize(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "scanned text", text)
	assert.Equal(t, int32(1), engine.calls.Load(), "unchanged bytes must not re-run OCR")

	entry, err := store.Get(ctx, ec.Key(raw.Path))
	require.NoError(t, err)
	f1 := entry.Fingerprint
	assert.Equal(t, domain.Fingerprint([]byte("bytes v1")), f1)
	assert.Equal(t, "8", entry.Meta["source_size"])

	changed := &domain.RawFile{Path: "/docs/doc.pdf", Content: []byte("bytes v2")}
	_, err = ocr.Recognize(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, int32(2), engine.calls.Load(), "changed bytes must re-run OCR")

	entry, err = store.Get(ctx, ec.Key(raw.Path))
	require.NoError(t, err)
	assert.NotEqual(t, f1, entry.Fingerprint)
	assert.Equal(t, domain.Fingerprint([]byte("bytes v2")), entry.Fingerprint)
}

func TestExtractionCache_WrapDoesNotCacheFailures(t *testing.T) {
	store := memory.NewBlobStore()
	ec := NewExtractionCache(NewContentCache(store))
	engine := &countingOCR{text: "partial", err: context.Canceled}
	ocr := ec.Wrap(engine)

	raw := &domain.RawFile{Path: "/docs/doc.pdf", Content: []byte("bytes")}
	_, err := ocr.Recognize(context.Background(), raw)
	require.ErrorIs(t, err, context.Canceled)

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys, "partial OCR output must be discarded")
}

func TestExtractionCache_WrapSurvivesWriteFailure(t *testing.T) {
	ec := NewExtractionCache(NewContentCache(&failingBlobStore{
		getErr: domain.ErrNotFound,
		putErr: errors.New("disk full"),
	}))
	engine := &countingOCR{text: "scanned"}

	text, err := ec.Wrap(engine).Recognize(context.Background(),
		&domain.RawFile{Path: "/docs/doc.pdf", Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "scanned", text)
}

func TestExtractionCache_WrapNilFile(t *testing.T) {
	ec := NewExtractionCache(NewContentCache(memory.NewBlobStore()))

	_, err := ec.Wrap(&countingOCR{}).Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
