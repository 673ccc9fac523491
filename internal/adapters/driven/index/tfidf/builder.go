package tfidf

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.IndexBuilder = (*Builder)(nil)

// DefaultMaxFeatures is the default vocabulary size.
const DefaultMaxFeatures = 1000

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Builder constructs TF-IDF indexes.
type Builder struct {
	// MaxFeatures caps the vocabulary. Zero or negative means unlimited.
	MaxFeatures int

	stopWords map[string]struct{}
}

// New creates a builder with the default vocabulary size and the English
// stop-word list.
func New() *Builder {
	return NewWithOptions(DefaultMaxFeatures, EnglishStopWords())
}

// NewWithOptions creates a builder with the given vocabulary cap and stop words.
func NewWithOptions(maxFeatures int, stopWords []string) *Builder {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Builder{
		MaxFeatures: maxFeatures,
		stopWords:   set,
	}
}

// Tokenize splits text into the terms the index would count for it.
func (b *Builder) Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := b.stopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Build indexes corpus, one vector per entry, in order.
func (b *Builder) Build(ctx context.Context, corpus []string) (driven.RelevanceIndex, error) {
	if len(corpus) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	counts := make([]map[string]int, len(corpus))
	totals := make(map[string]int)
	for i, text := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tf := make(map[string]int)
		for _, t := range b.Tokenize(text) {
			tf[t]++
			totals[t]++
		}
		counts[i] = tf
	}

	vocabulary := b.selectVocabulary(totals)
	columns := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		columns[term] = i
	}

	df := make([]int, len(vocabulary))
	for _, tf := range counts {
		for term := range tf {
			if col, ok := columns[term]; ok {
				df[col]++
			}
		}
	}

	n := float64(len(corpus))
	idf := make([]float64, len(vocabulary))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]vector, len(corpus))
	for i, tf := range counts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make(vector, 0, len(tf))
		for term, c := range tf {
			if col, ok := columns[term]; ok {
				v = append(v, entry{Col: col, Val: float64(c) * idf[col]})
			}
		}
		vectors[i] = v.normalize()
	}

	return &Index{
		builder:    b,
		vocabulary: vocabulary,
		columns:    columns,
		idf:        idf,
		vectors:    vectors,
	}, nil
}

// selectVocabulary keeps the MaxFeatures most frequent terms, ties broken
// alphabetically, and returns them in alphabetical order.
func (b *Builder) selectVocabulary(totals map[string]int) []string {
	terms := make([]string, 0, len(totals))
	for t := range totals {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if b.MaxFeatures > 0 && len(terms) > b.MaxFeatures {
		terms = terms[:b.MaxFeatures]
	}
	sort.Strings(terms)
	return terms
}

// Decode restores an index produced by Index.Encode.
func (b *Builder) Decode(data []byte) (driven.RelevanceIndex, error) {
	var enc encoded
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("%w: decoding index: %v", domain.ErrCacheCorrupt, err)
	}
	if enc.Version != encodingVersion {
		return nil, fmt.Errorf("%w: index version %d, want %d", domain.ErrCacheCorrupt, enc.Version, encodingVersion)
	}
	if len(enc.IDF) != len(enc.Vocabulary) {
		return nil, fmt.Errorf("%w: %d idf weights for %d terms", domain.ErrCacheCorrupt, len(enc.IDF), len(enc.Vocabulary))
	}
	if len(enc.Vectors) == 0 {
		return nil, fmt.Errorf("%w: index has no documents", domain.ErrCacheCorrupt)
	}

	columns := make(map[string]int, len(enc.Vocabulary))
	for i, term := range enc.Vocabulary {
		if _, dup := columns[term]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", domain.ErrCacheCorrupt, term)
		}
		columns[term] = i
	}
	for i, v := range enc.Vectors {
		for j, e := range v {
			if e.Col < 0 || e.Col >= len(enc.Vocabulary) {
				return nil, fmt.Errorf("%w: vector %d references column %d", domain.ErrCacheCorrupt, i, e.Col)
			}
			// dot walks both vectors in column order.
			if j > 0 && e.Col <= v[j-1].Col {
				return nil, fmt.Errorf("%w: vector %d columns not strictly increasing", domain.ErrCacheCorrupt, i)
			}
		}
	}

	return &Index{
		builder:    b,
		vocabulary: enc.Vocabulary,
		columns:    columns,
		idf:        enc.IDF,
		vectors:    enc.Vectors,
	}, nil
}
