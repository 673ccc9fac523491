package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RetrievalService answers queries against the current corpus.
// It never fails: an empty corpus or a query without matches gives
// an empty result.
type RetrievalService interface {
	// Retrieve returns up to k documents ranked by relevance.
	Retrieve(ctx context.Context, query string, k int) []domain.RetrievalResult

	// Context returns the retrieved documents formatted as context
	// for an answer generator.
	Context(ctx context.Context, query string, k int) string
}
