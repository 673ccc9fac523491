package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search the document library", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "exact phrase")
	assert.Contains(t, searchCmd.Long, "TF-IDF")
	assert.Contains(t, searchCmd.Long, "key terms")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_Flags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit, "limit flag should exist")
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "0", limit.DefValue)

	require.NotNil(t, searchCmd.Flags().Lookup("json"))
	require.NotNil(t, searchCmd.Flags().Lookup("context"))
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "What is Python used for?")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "(0.760)")
	assert.Contains(t, out, "vector")
	assert.Contains(t, out, "Python is used for web development.")
	assert.Equal(t, "What is Python used for?", ts.retrieval.lastQuery)
	assert.Equal(t, 0, ts.retrieval.lastK)
	assert.Equal(t, 1, ts.library.refreshes)
}

func TestSearchCmd_PassesLimit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "-n", "5", "python")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.retrieval.lastK)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.results = nil

	out, err := execute(t, "search", "quantum")

	require.NoError(t, err)
	assert.Contains(t, out, "No relevant documents found.")
	assert.NotContains(t, out, "Results:")
}

func TestSearchCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "--json", "python")
	require.NoError(t, err)

	var results []searchResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].FileName)
	assert.Equal(t, "/docs/a.txt", results[0].FilePath)
	assert.InDelta(t, 0.76, results[0].Score, 1e-9)
	assert.Equal(t, "vector", results[0].MatchKind)
}

func TestSearchCmd_Context(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "--context", "-n", "2", "python")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Relevant Document 1 - a.txt"))
	assert.Equal(t, 2, ts.retrieval.lastK)
}

func TestSearchCmd_JSONAndContextExclusive(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "--json", "--context", "python")
	assert.Error(t, err)
}

func TestSearchCmd_RefreshFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.library.err = assert.AnError

	_, err := execute(t, "search", "python")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading documents from /docs")
}

func TestSearchCmd_NoRetrievalService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	retrievalService = nil

	_, err := execute(t, "search", "python")
	assert.EqualError(t, err, "retrieval service not configured")
}

func TestSnippet(t *testing.T) {
	assert.Empty(t, snippet("   ", 40, 3))
	assert.Equal(t, []string{"one two three"}, snippet("one\n two\tthree", 40, 3))

	long := strings.Repeat("word ", 100)
	lines := snippet(long, 20, 2)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "..."))
	for _, l := range lines {
		assert.LessOrEqual(t, len([]rune(l)), 20)
	}
}
