package driven

import "context"

// RelevanceIndex answers similarity queries over a fixed corpus.
// An index is immutable once built and safe for concurrent readers.
type RelevanceIndex interface {
	// Similarity scores every document against the query.
	// Hits are sorted by score descending; ties keep document order.
	Similarity(query string) []Hit

	// Len returns the number of indexed documents.
	Len() int

	// Encode serialises the index for caching.
	Encode() ([]byte, error)
}

// Hit is the similarity of one document to a query.
type Hit struct {
	// Position is the document's index in the corpus it was built from.
	Position int

	// Score is the cosine similarity (0-1).
	Score float64
}

// IndexBuilder constructs relevance indexes.
type IndexBuilder interface {
	// Build indexes corpus, one entry per document, in order.
	// Returns domain.ErrEmptyCorpus if corpus is empty.
	Build(ctx context.Context, corpus []string) (RelevanceIndex, error)

	// Decode restores an index produced by RelevanceIndex.Encode.
	Decode(data []byte) (RelevanceIndex, error)
}
