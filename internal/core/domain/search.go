package domain

// MatchKind records which strategy produced a retrieval result.
type MatchKind string

// Match kinds.
const (
	// MatchExact is a literal substring hit.
	MatchExact MatchKind = "exact"

	// MatchVector is a TF-IDF cosine hit.
	MatchVector MatchKind = "vector"

	// MatchHybrid means both strategies matched the same document.
	MatchHybrid MatchKind = "hybrid"
)

// String returns the string representation.
func (k MatchKind) String() string {
	return string(k)
}

// RetrievalResult is one ranked document for a query.
type RetrievalResult struct {
	// Document is the matched document. It is shared, not owned.
	Document Document `json:"document"`

	// Score is the relevance in [0, 1].
	Score float64 `json:"score"`

	// MatchKind is the strategy that produced the score.
	MatchKind MatchKind `json:"match_kind"`
}
