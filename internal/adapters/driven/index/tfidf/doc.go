// Package tfidf provides a TF-IDF relevance index with cosine similarity.
//
// Documents are tokenised into lower-case words of two or more letters or
// digits, English stop words are dropped, and the vocabulary is capped at
// the most frequent terms. Each document becomes a sparse, L2-normalised
// vector of raw term counts weighted by smoothed inverse document frequency.
//
// An index is immutable once built and can be encoded to JSON so that an
// unchanged corpus never has to be re-weighted.
package tfidf
