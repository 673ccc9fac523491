package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentSource enumerates and reads files from a document directory.
type DocumentSource interface {
	// List returns the paths of regular files in dir whose extension is in
	// extensions, sorted lexicographically. It does not descend into
	// subdirectories. Returns an error only if dir cannot be read.
	List(ctx context.Context, dir string, extensions []string) ([]string, error)

	// Read returns the bytes of the file at path.
	Read(ctx context.Context, path string) (*domain.RawFile, error)
}
