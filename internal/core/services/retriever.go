package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure HybridRetriever implements the interface.
var _ driving.RetrievalService = (*HybridRetriever)(nil)

const (
	defaultTopK     = 3
	defaultMinScore = 0.05

	// significantTermLen is the minimum length of a term tried on its own
	// in the last fallback round (exclusive).
	significantTermLen = 4

	// contextContentLimit caps the content of one document in Context output.
	contextContentLimit = 1000

	// NoResultsContext is returned by Context when nothing matches.
	NoResultsContext = "No relevant documents found."
)

// Patterns for date-like terms matched literally alongside the query.
var (
	monthYearPattern = regexp.MustCompile(
		`\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`)
	monthSlashYearPattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{4}\b`)
	yearSlashMonthPattern = regexp.MustCompile(`\b\d{4}[/-]\d{1,2}\b`)

	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// questionWords are removed when reducing a query to its key terms.
var questionWords = map[string]struct{}{
	"what": {}, "is": {}, "are": {}, "how": {}, "when": {}, "where": {},
	"why": {}, "who": {}, "which": {}, "the": {}, "a": {}, "an": {},
}

// scored is a candidate result with the document's corpus position,
// used to break score ties in document order.
type scored struct {
	position int
	result   domain.RetrievalResult
}

// HybridRetriever ranks documents by combining literal substring matches
// with TF-IDF similarity, falling back to reduced queries when the full
// query finds nothing.
type HybridRetriever struct {
	library  *Library
	topK     int
	minScore float64
}

// NewHybridRetriever creates a retriever over the library's published corpus.
func NewHybridRetriever(library *Library) *HybridRetriever {
	return &HybridRetriever{
		library:  library,
		topK:     defaultTopK,
		minScore: defaultMinScore,
	}
}

// SetTopK sets the result count used when Retrieve is called with k <= 0.
func (r *HybridRetriever) SetTopK(k int) {
	if k > 0 {
		r.topK = k
	}
}

// SetMinScore sets the similarity a vector hit must exceed.
func (r *HybridRetriever) SetMinScore(score float64) {
	if score >= 0 {
		r.minScore = score
	}
}

// Retrieve returns up to k documents ranked by relevance.
// It returns an empty slice when there is no corpus, no index, or no match.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, k int) []domain.RetrievalResult {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	if k <= 0 {
		k = r.topK
	}
	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}
	}

	c := r.library.published()
	if c == nil || c.index == nil || c.snapshot.Len() == 0 {
		logger.Debug("No index available, returning no results")
		return []domain.RetrievalResult{}
	}

	var all []scored

	// Round 1: the query as given.
	round := r.searchRound(c, query, k)
	logger.Debug("Round 1 (raw query): %d results", len(round))
	all = append(all, round...)

	// Round 2: key terms only.
	keyTerms := extractKeyTerms(query)
	if len(round) == 0 && ctx.Err() == nil {
		joined := strings.Join(keyTerms, " ")
		if joined != "" && joined != strings.ToLower(query) {
			round = r.searchRound(c, joined, k)
			logger.Debug("Round 2 (key terms %q): %d results", joined, len(round))
			all = append(all, round...)
		}
	}

	// Round 3: each significant term alone, stopping at the first hit.
	if len(all) == 0 {
		for _, term := range keyTerms {
			if ctx.Err() != nil {
				break
			}
			if utf8.RuneCountInString(term) <= significantTermLen {
				continue
			}
			round = r.searchRound(c, term, k)
			logger.Debug("Round 3 (term %q): %d results", term, len(round))
			if len(round) > 0 {
				all = append(all, round...)
				break
			}
		}
	}

	results := dedupAndRank(all, k)
	logger.Info("Final results: %d", len(results))
	return results
}

// Context formats the retrieved documents for an answer generator.
func (r *HybridRetriever) Context(ctx context.Context, query string, k int) string {
	return FormatContext(r.Retrieve(ctx, query, k))
}

// FormatContext renders results as numbered context blocks.
func FormatContext(results []domain.RetrievalResult) string {
	if len(results) == 0 {
		return NoResultsContext
	}

	var b strings.Builder
	for i := range results {
		doc := results[i].Document
		fmt.Fprintf(&b, "Relevant Document %d - %s (Score: %.3f):\n", i+1, doc.FileName, results[i].Score)

		content := doc.Content
		if runes := []rune(content); len(runes) > contextContentLimit {
			b.WriteString(string(runes[:contextContentLimit]))
			b.WriteString("...\n\n")
		} else {
			b.WriteString(content)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// searchRound runs exact and vector matching for one query string and
// merges them by file name.
func (r *HybridRetriever) searchRound(c *corpus, query string, k int) []scored {
	docs := c.snapshot.Documents
	terms := exactTerms(query)

	merged := make([]scored, 0, k)
	byName := make(map[string]int)

	for i := range docs {
		score, ok := guardScore(docs[i].FileName, func() (float64, bool) {
			return exactScore(docs[i].Content, terms)
		})
		if !ok {
			continue
		}
		byName[docs[i].FileName] = len(merged)
		merged = append(merged, scored{
			position: i,
			result:   domain.RetrievalResult{Document: docs[i], Score: score, MatchKind: domain.MatchExact},
		})
	}

	for _, hit := range r.vectorHits(c, query, k) {
		doc := docs[hit.position]
		if idx, ok := byName[doc.FileName]; ok {
			existing := &merged[idx].result
			existing.Score = max(existing.Score, hit.score)
			existing.MatchKind = domain.MatchHybrid
			continue
		}
		byName[doc.FileName] = len(merged)
		merged = append(merged, scored{
			position: hit.position,
			result:   domain.RetrievalResult{Document: doc, Score: hit.score, MatchKind: domain.MatchVector},
		})
	}

	sortScored(merged)
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// vectorHit is a similarity hit that passed the threshold.
type vectorHit struct {
	position int
	score    float64
}

// vectorHits returns the top k similarity hits above the minimum score.
func (r *HybridRetriever) vectorHits(c *corpus, query string, k int) (hits []vectorHit) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("Vector scoring failed for %q: %v", query, rec)
			hits = nil
		}
	}()

	all := c.index.Similarity(query)
	n := c.snapshot.Len()
	for _, h := range all {
		if len(hits) == k {
			break
		}
		if h.Position < 0 || h.Position >= n {
			logger.Warn("Skipping vector hit at position %d: corpus has %d documents", h.Position, n)
			continue
		}
		if h.Score > r.minScore {
			hits = append(hits, vectorHit{position: h.Position, score: h.Score})
		}
	}
	return hits
}

// exactTerms returns the lowercased query followed by any date-like
// substrings found in it.
func exactTerms(query string) []string {
	lower := strings.ToLower(query)
	terms := []string{lower}
	terms = append(terms, monthYearPattern.FindAllString(lower, -1)...)
	terms = append(terms, monthSlashYearPattern.FindAllString(lower, -1)...)
	terms = append(terms, yearSlashMonthPattern.FindAllString(lower, -1)...)
	return terms
}

// exactScore scores content by its longest literal match among terms.
// Longer terms are more specific and score higher, capped at 1.
func exactScore(content string, terms []string) (float64, bool) {
	lower := strings.ToLower(content)
	best := 0.0
	found := false
	for _, term := range terms {
		if term == "" || !strings.Contains(lower, term) {
			continue
		}
		found = true
		best = max(best, min(1.0, float64(utf8.RuneCountInString(term))/20.0+0.5))
	}
	return best, found
}

// guardScore runs score, recovering from a panic so one malformed
// document cannot fail the whole query.
func guardScore(name string, score func() (float64, bool)) (s float64, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("Scoring failed for %s, skipping: %v", name, rec)
			s, ok = 0, false
		}
	}()
	return score()
}

// extractKeyTerms lowercases query, replaces punctuation with spaces and
// drops question words and tokens of two characters or fewer.
func extractKeyTerms(query string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(query), " ")

	var terms []string
	for _, word := range strings.Fields(cleaned) {
		if _, stop := questionWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// dedupAndRank removes repeats across rounds, keeping the first
// occurrence, then ranks and truncates to k.
func dedupAndRank(all []scored, k int) []domain.RetrievalResult {
	seen := make(map[domain.DocumentKey]struct{}, len(all))
	unique := make([]scored, 0, len(all))
	for _, s := range all {
		key := s.result.Document.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, s)
	}

	sortScored(unique)
	if len(unique) > k {
		unique = unique[:k]
	}

	results := make([]domain.RetrievalResult, len(unique))
	for i := range unique {
		results[i] = unique[i].result
	}
	return results
}

// sortScored orders by score descending, then by corpus position.
func sortScored(s []scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].result.Score != s[j].result.Score {
			return s[i].result.Score > s[j].result.Score
		}
		return s[i].position < s[j].position
	})
}
