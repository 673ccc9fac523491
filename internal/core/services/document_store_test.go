package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/extractors/markdown"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func newTextStore() *DocumentStore {
	return NewDocumentStore(filesystem.NewSource(), NewExtractorRegistry(plaintext.New(), markdown.New()))
}

func TestDocumentStore_LoadAllInPathOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"c.txt":       "third",
		"a.txt":       "first",
		"b.md":        "# Second",
		"image.jpg":   "not a document",
		".hidden.txt": "skip me",
	})

	docs, err := newTextStore().LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "a.txt", docs[0].FileName)
	assert.Equal(t, "b.md", docs[1].FileName)
	assert.Equal(t, "c.txt", docs[2].FileName)

	assert.Equal(t, "first", docs[0].Content)
	assert.Equal(t, domain.FileTypeMarkdown, docs[1].FileType)
	assert.Equal(t, "Second", docs[1].Content)
	assert.Equal(t, filepath.Join(dir, "c.txt"), docs[2].FilePath)
}

func TestDocumentStore_EmptyDirectory(t *testing.T) {
	docs, err := newTextStore().LoadAll(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_MissingDirectory(t *testing.T) {
	_, err := newTextStore().LoadAll(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDocumentStore_FailuresBecomePlaceholders(t *testing.T) {
	tests := []struct {
		name      string
		extractor *stubExtractor
		contains  string
	}{
		{
			name:      "extractor error",
			extractor: &stubExtractor{exts: []string{".md"}, err: errors.New("bad markup")},
			contains:  "bad markup",
		},
		{
			name:      "extractor panic",
			extractor: &stubExtractor{exts: []string{".md"}, panic: true},
			contains:  "malformed file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{
				"a.txt": "fine",
				"b.md":  "broken",
				"c.txt": "also fine",
			})
			store := NewDocumentStore(filesystem.NewSource(), NewExtractorRegistry(plaintext.New(), tt.extractor))

			docs, err := store.LoadAll(context.Background(), dir)
			require.NoError(t, err)
			require.Len(t, docs, 3, "every discovered file yields a document")

			assert.Equal(t, "fine", docs[0].Content)
			assert.Equal(t, "b.md", docs[1].FileName)
			assert.Contains(t, docs[1].Content, "Error loading b.md:")
			assert.Contains(t, docs[1].Content, tt.contains)
			assert.Equal(t, "also fine", docs[2].Content)
		})
	}
}

func TestDocumentStore_EmptyFileGetsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"empty.txt": "   \n"})

	docs, err := newTextStore().LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.EmptyContentPlaceholder("empty.txt"), docs[0].Content)
}

func TestDocumentStore_ExtractTimeout(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"slow.md": "x", "fast.txt": "quick"})

	store := NewDocumentStore(filesystem.NewSource(), NewExtractorRegistry(
		plaintext.New(),
		&stubExtractor{exts: []string{".md"}, block: true},
	))
	store.SetExtractTimeout(20 * time.Millisecond)

	docs, err := store.LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "quick", docs[0].Content)
	assert.Contains(t, docs[1].Content, "Error loading slow.md:")
	assert.Contains(t, docs[1].Content, context.DeadlineExceeded.Error())
}

func TestDocumentStore_UnknownFileTypeGetsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "first", "notes.rst": "Title\n====="})

	store := NewDocumentStore(filesystem.NewSource(), NewExtractorRegistry(
		plaintext.New(),
		&stubExtractor{exts: []string{".rst"}},
	))

	docs, err := store.LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 2, "every listed file yields a document")
	assert.Equal(t, "first", docs[0].Content)
	assert.Equal(t, "notes.rst", docs[1].FileName)
	assert.Equal(t, domain.FileType(".rst"), docs[1].FileType)
	assert.Contains(t, docs[1].Content, "Error loading notes.rst:")
}

func TestDocumentStore_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTextStore().LoadAll(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentStore_RefreshSeesChanges(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "v1"})
	store := newTextStore()
	ctx := context.Background()

	docs, err := store.Refresh(ctx, dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	writeFiles(t, dir, map[string]string{"a.txt": "v2", "b.txt": "new"})
	docs, err = store.Refresh(ctx, dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "v2", docs[0].Content)
}

func TestDocumentStore_SupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".md", ".txt"}, newTextStore().SupportedExtensions())
}
