package tfidf

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.RelevanceIndex = (*Index)(nil)

const encodingVersion = 1

// entry is one non-zero weight of a sparse vector.
type entry struct {
	Col int     `json:"c"`
	Val float64 `json:"v"`
}

// vector is a sparse vector sorted by column.
type vector []entry

// normalize sorts v by column and scales it to unit length.
// A zero vector is returned unchanged.
func (v vector) normalize() vector {
	sort.Slice(v, func(i, j int) bool { return v[i].Col < v[j].Col })
	var sum float64
	for _, e := range v {
		sum += e.Val * e.Val
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i].Val /= norm
	}
	return v
}

// dot multiplies two column-sorted vectors.
func (v vector) dot(o vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v) && j < len(o) {
		switch {
		case v[i].Col == o[j].Col:
			sum += v[i].Val * o[j].Val
			i++
			j++
		case v[i].Col < o[j].Col:
			i++
		default:
			j++
		}
	}
	return sum
}

// encoded is the JSON form of an index.
type encoded struct {
	Version    int       `json:"version"`
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
	Vectors    []vector  `json:"vectors"`
}

// Index is an immutable TF-IDF index. It is safe for concurrent readers.
type Index struct {
	builder    *Builder
	vocabulary []string
	columns    map[string]int
	idf        []float64
	vectors    []vector
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	return len(x.vectors)
}

// Vocabulary returns the terms in column order.
func (x *Index) Vocabulary() []string {
	out := make([]string, len(x.vocabulary))
	copy(out, x.vocabulary)
	return out
}

// Similarity scores every document against query.
func (x *Index) Similarity(query string) []driven.Hit {
	q := x.project(query)

	hits := make([]driven.Hit, len(x.vectors))
	for i, v := range x.vectors {
		score := 0.0
		if len(q) > 0 {
			score = q.dot(v)
		}
		// Rounding can push a self-match just past one.
		if score > 1 {
			score = 1
		}
		hits[i] = driven.Hit{Position: i, Score: score}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits
}

// project maps text onto the index vocabulary.
func (x *Index) project(text string) vector {
	tf := make(map[int]int)
	for _, t := range x.builder.Tokenize(text) {
		if col, ok := x.columns[t]; ok {
			tf[col]++
		}
	}
	v := make(vector, 0, len(tf))
	for col, c := range tf {
		v = append(v, entry{Col: col, Val: float64(c) * x.idf[col]})
	}
	return v.normalize()
}

// Encode serialises the index to JSON.
func (x *Index) Encode() ([]byte, error) {
	return json.Marshal(encoded{
		Version:    encodingVersion,
		Vocabulary: x.vocabulary,
		IDF:        x.idf,
		Vectors:    x.vectors,
	})
}
