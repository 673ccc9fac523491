package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source reads documents from the local filesystem.
type Source struct {
	// MaxFileSize is the largest file Read accepts. Zero means no limit.
	MaxFileSize int64
}

// NewSource creates a filesystem document source.
func NewSource() *Source {
	return &Source{}
}

// List returns the regular, non-hidden files directly inside dir whose
// extension is one of extensions, sorted by path.
func (s *Source) List(ctx context.Context, dir string, extensions []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading document directory: %w", err)
	}

	wanted := extensionSet(extensions)
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if isHidden(name) || !wanted.has(name) {
			continue
		}
		// Follow symlinks so linked documents are included.
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	sort.Strings(paths)
	return paths, nil
}

// Read returns the bytes of the file at path.
func (s *Source) Read(ctx context.Context, path string) (*domain.RawFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if s.MaxFileSize > 0 && info.Size() > s.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", domain.ErrInvalidInput, path, info.Size(), s.MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &domain.RawFile{Path: path, Content: content}, nil
}

type extSet map[string]struct{}

func extensionSet(extensions []string) extSet {
	set := make(extSet, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func (s extSet) has(name string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(name))]
	return ok
}

// isHidden returns true if any path component starts with a dot.
// "." and ".." are not considered hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
