package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates a file type without an extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrToolNotFound indicates an external extraction tool is not installed.
	ErrToolNotFound = errors.New("extraction tool not found")

	// Pipeline Errors.

	// ErrExtraction indicates text extraction failed for a single file.
	// It is recoverable: the file gets a placeholder document.
	ErrExtraction = errors.New("extraction failed")

	// ErrCacheMiss indicates a cache entry is absent or stale.
	// It is not a failure; callers fall through to recomputation.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupt indicates a cache entry could not be decoded.
	// Readers treat it exactly like ErrCacheMiss.
	ErrCacheCorrupt = errors.New("cache entry corrupt")

	// ErrEmptyCorpus indicates an index build was attempted with no documents.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrWrite indicates a cache entry could not be persisted.
	ErrWrite = errors.New("cache write failed")
)

// ExtractionError reports a failed extraction of one file.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// WriteError reports a failed cache persistence.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing cache entry %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches ErrWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}
