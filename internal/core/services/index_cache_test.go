package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/index/tfidf"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// countingBuilder wraps an IndexBuilder and counts builds.
type countingBuilder struct {
	driven.IndexBuilder
	builds int
}

func (b *countingBuilder) Build(ctx context.Context, corpus []string) (driven.RelevanceIndex, error) {
	b.builds++
	return b.IndexBuilder.Build(ctx, corpus)
}

func testDocs(t *testing.T, contents ...string) []domain.Document {
	t.Helper()
	names := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	docs := make([]domain.Document, len(contents))
	for i, c := range contents {
		doc, err := domain.NewDocument("/docs/"+names[i], domain.FileTypeText, c)
		require.NoError(t, err)
		docs[i] = doc
	}
	return docs
}

func TestCorpusFingerprint(t *testing.T) {
	docs := testDocs(t, "alpha", "beta")

	assert.Equal(t, CorpusFingerprint(docs), CorpusFingerprint(testDocs(t, "alpha", "beta")))
	assert.Equal(t, domain.FingerprintStrings([]string{"alpha", "beta"}), CorpusFingerprint(docs))
	assert.NotEqual(t, CorpusFingerprint(docs), CorpusFingerprint(testDocs(t, "beta", "alpha")),
		"fingerprint depends on collection order")
}

func TestIndexCache_Key(t *testing.T) {
	ic := NewIndexCache(NewContentCache(memory.NewBlobStore()), tfidf.New())

	assert.Equal(t, "index/0123456789abcdef", ic.Key("0123456789abcdef0123"))
	assert.Equal(t, "index/abc", ic.Key("abc"))
}

func TestIndexCache_EmptyCorpus(t *testing.T) {
	ic := NewIndexCache(NewContentCache(memory.NewBlobStore()), tfidf.New())

	built, err := ic.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
	assert.Nil(t, built)
}

func TestIndexCache_ReusesCachedIndex(t *testing.T) {
	builder := &countingBuilder{IndexBuilder: tfidf.New()}
	ic := NewIndexCache(NewContentCache(memory.NewBlobStore()), builder)
	ctx := context.Background()
	docs := testDocs(t, "Python is used for web development.", "Machine learning is AI.")

	first, err := ic.Build(ctx, docs)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, CorpusFingerprint(docs), first.Fingerprint)

	second, err := ic.Build(ctx, docs)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, builder.builds, "unchanged corpus must not be rebuilt")
	assert.Equal(t, first.Index.Similarity("python"), second.Index.Similarity("python"))
}

func TestIndexCache_ChangedCorpusRebuilds(t *testing.T) {
	builder := &countingBuilder{IndexBuilder: tfidf.New()}
	ic := NewIndexCache(NewContentCache(memory.NewBlobStore()), builder)
	ctx := context.Background()

	_, err := ic.Build(ctx, testDocs(t, "alpha beta", "gamma delta"))
	require.NoError(t, err)

	built, err := ic.Build(ctx, testDocs(t, "alpha beta", "gamma epsilon"))
	require.NoError(t, err)
	assert.False(t, built.Cached)
	assert.Equal(t, 2, builder.builds)
}

func TestIndexCache_CorruptPayloadRebuilds(t *testing.T) {
	store := memory.NewBlobStore()
	cache := NewContentCache(store)
	builder := &countingBuilder{IndexBuilder: tfidf.New()}
	ic := NewIndexCache(cache, builder)
	ctx := context.Background()
	docs := testDocs(t, "alpha beta", "gamma delta")

	fp := CorpusFingerprint(docs)
	require.NoError(t, cache.Put(ctx, ic.Key(fp), fp, []byte("{not json")))

	built, err := ic.Build(ctx, docs)
	require.NoError(t, err)
	assert.False(t, built.Cached)
	assert.Equal(t, 1, builder.builds)

	// The rebuilt index replaced the corrupt entry.
	again, err := ic.Build(ctx, docs)
	require.NoError(t, err)
	assert.True(t, again.Cached)
}

func TestIndexCache_MisalignedPayloadRebuilds(t *testing.T) {
	cache := NewContentCache(memory.NewBlobStore())
	builder := &countingBuilder{IndexBuilder: tfidf.New()}
	ic := NewIndexCache(cache, builder)
	ctx := context.Background()
	docs := testDocs(t, "alpha beta", "gamma delta")

	other, err := tfidf.New().Build(ctx, []string{"alpha"})
	require.NoError(t, err)
	payload, err := other.Encode()
	require.NoError(t, err)

	fp := CorpusFingerprint(docs)
	require.NoError(t, cache.Put(ctx, ic.Key(fp), fp, payload))

	built, err := ic.Build(ctx, docs)
	require.NoError(t, err)
	assert.False(t, built.Cached)
	assert.Equal(t, 2, built.Index.Len())
}

func TestIndexCache_WriteFailureStillReturnsIndex(t *testing.T) {
	cache := NewContentCache(&failingBlobStore{
		getErr: domain.ErrNotFound,
		putErr: assert.AnError,
	})
	ic := NewIndexCache(cache, tfidf.New())

	built, err := ic.Build(context.Background(), testDocs(t, "alpha beta"))
	require.NoError(t, err)
	assert.Equal(t, 1, built.Index.Len())
}

func TestIndexCache_AlignedWithDocuments(t *testing.T) {
	ic := NewIndexCache(NewContentCache(memory.NewBlobStore()), tfidf.New())
	docs := testDocs(t, "zebra stripes", "apple orchard", "mango grove")

	built, err := ic.Build(context.Background(), docs)
	require.NoError(t, err)
	require.Equal(t, len(docs), built.Index.Len())

	for i, query := range []string{"zebra", "apple", "mango"} {
		hits := built.Index.Similarity(query)
		require.NotEmpty(t, hits)
		assert.Equal(t, i, hits[0].Position, "query %q", query)
	}
}

func TestIndexCache_ContentShiftedAcrossDocumentsRebuilds(t *testing.T) {
	builder := &countingBuilder{IndexBuilder: tfidf.New()}
	ic := NewIndexCache(NewContentCache(memory.NewBlobStore()), builder)
	ctx := context.Background()

	_, err := ic.Build(ctx, testDocs(t, "alpha beta", "gamma"))
	require.NoError(t, err)

	shifted, err := ic.Build(ctx, testDocs(t, "alpha", " betagamma"))
	require.NoError(t, err)
	assert.False(t, shifted.Cached)
	assert.Equal(t, 2, builder.builds)

	for _, hit := range shifted.Index.Similarity("gamma") {
		assert.Zero(t, hit.Score, "no document contains the token gamma")
	}
}
