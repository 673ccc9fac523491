package domain

import (
	"fmt"
	"time"
)

// CacheBackend selects the storage used for cache entries.
type CacheBackend string

// Available cache backends.
const (
	// CacheBackendFile stores one file per entry in the cache directory.
	CacheBackendFile CacheBackend = "file"

	// CacheBackendSQLite stores entries in a SQLite database.
	CacheBackendSQLite CacheBackend = "sqlite"

	// CacheBackendMemory keeps entries for the lifetime of the process.
	CacheBackendMemory CacheBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendFile, CacheBackendSQLite, CacheBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// Settings is the typed application configuration.
type Settings struct {
	DocumentsDir string
	CacheBackend CacheBackend
	CacheDir     string

	TopK        int
	MinScore    float64
	MaxFeatures int

	// ExtractTimeout bounds extraction of one file. Zero means no limit.
	ExtractTimeout time.Duration

	OCR OCRSettings

	WatchDebounce time.Duration
}

// OCRSettings configures the OCR fallback for scanned PDFs.
type OCRSettings struct {
	Enabled        bool
	MaxPages       int
	DPI            int
	Language       string
	PagesPerSecond float64
}

// DefaultSettings returns the built-in defaults.
// CacheDir is left empty and resolved against the config directory.
func DefaultSettings() Settings {
	return Settings{
		DocumentsDir: "documents",
		CacheBackend: CacheBackendFile,
		TopK:         3,
		MinScore:     0.05,
		MaxFeatures:  1000,
		OCR: OCRSettings{
			Enabled:  true,
			MaxPages: 215,
			DPI:      200,
			Language: "eng",
		},
		WatchDebounce: 500 * time.Millisecond,
	}
}

// Validate checks that settings are usable.
func (s Settings) Validate() error {
	if s.DocumentsDir == "" {
		return fmt.Errorf("%w: documents.dir is empty", ErrInvalidInput)
	}
	if !s.CacheBackend.IsValid() {
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidInput, s.CacheBackend)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidInput)
	}
	if s.MinScore < 0 || s.MinScore >= 1 {
		return fmt.Errorf("%w: retrieval.min_score must be in [0, 1)", ErrInvalidInput)
	}
	if s.MaxFeatures <= 0 {
		return fmt.Errorf("%w: index.max_features must be positive", ErrInvalidInput)
	}
	if s.OCR.MaxPages <= 0 {
		return fmt.Errorf("%w: ocr.max_pages must be positive", ErrInvalidInput)
	}
	if s.ExtractTimeout < 0 {
		return fmt.Errorf("%w: extract.timeout must not be negative", ErrInvalidInput)
	}
	if s.OCR.PagesPerSecond < 0 {
		return fmt.Errorf("%w: ocr.pages_per_second must not be negative", ErrInvalidInput)
	}
	return nil
}
