package domain

import "time"

// Snapshot describes one published corpus: the documents of a single
// load and the outcome of building their index.
type Snapshot struct {
	// ID uniquely identifies this load.
	ID string `json:"id"`

	// Directory is the source directory that was loaded.
	Directory string `json:"directory"`

	// Documents is the ordered document collection.
	Documents []Document `json:"documents"`

	// LoadedAt is when the snapshot was published.
	LoadedAt time.Time `json:"loaded_at"`

	// IndexFingerprint is the corpus fingerprint used for the index cache.
	IndexFingerprint string `json:"index_fingerprint,omitempty"`

	// IndexCached is true when the index was reused from cache.
	IndexCached bool `json:"index_cached"`

	// IndexErr is set when the index could not be built.
	// Retrieval against such a snapshot returns no results.
	IndexErr error `json:"-"`
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Documents)
}
