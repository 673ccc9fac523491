package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Extractor turns the raw bytes of a file into plain text.
// Each extractor handles a fixed set of extensions.
type Extractor interface {
	// Extensions returns the lower-case extensions handled, including the dot.
	Extensions() []string

	// Extract returns the text of the file.
	// An empty string with a nil error means the file has no text.
	Extract(ctx context.Context, raw *domain.RawFile) (string, error)
}

// ExtractorRegistry selects the extractor for a file extension.
type ExtractorRegistry interface {
	// Register adds an extractor. A later registration for the same
	// extension replaces the earlier one.
	Register(extractor Extractor)

	// For returns the extractor for ext.
	// Returns domain.ErrUnsupportedType if none is registered.
	For(ext string) (Extractor, error)

	// Extensions returns all registered extensions, sorted.
	Extensions() []string
}

// OCREngine recognises text in scanned documents.
type OCREngine interface {
	// Recognize returns the recognised text of the whole file.
	// Cancellation of ctx aborts the run and discards partial output.
	Recognize(ctx context.Context, raw *domain.RawFile) (string, error)
}
