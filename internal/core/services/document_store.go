package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DocumentStore loads every supported file of a directory into an
// ordered collection of documents.
type DocumentStore struct {
	source   driven.DocumentSource
	registry driven.ExtractorRegistry

	// extractTimeout bounds extraction of a single file. Zero means none.
	extractTimeout time.Duration
}

// NewDocumentStore creates a document store.
func NewDocumentStore(source driven.DocumentSource, registry driven.ExtractorRegistry) *DocumentStore {
	return &DocumentStore{
		source:   source,
		registry: registry,
	}
}

// SetExtractTimeout bounds the time spent extracting any one file.
// A file that times out loads as a placeholder document.
func (s *DocumentStore) SetExtractTimeout(d time.Duration) {
	s.extractTimeout = d
}

// SupportedExtensions returns the extensions that will be loaded.
func (s *DocumentStore) SupportedExtensions() []string {
	return s.registry.Extensions()
}

// LoadAll returns one document per supported file in dir, in
// lexicographic path order. A file that fails to load contributes a
// placeholder document instead of aborting the load.
func (s *DocumentStore) LoadAll(ctx context.Context, dir string) ([]domain.Document, error) {
	logger.Section("Document Load")
	logger.Debug("Directory: %s", dir)

	paths, err := s.source.List(ctx, dir, s.registry.Extensions())
	if err != nil {
		return nil, fmt.Errorf("listing documents in %s: %w", dir, err)
	}
	logger.Debug("Found %d supported files", len(paths))

	docs := make([]domain.Document, 0, len(paths))
	failed := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var doc domain.Document
		fileType, err := domain.ParseFileType(filepath.Ext(path))
		if err != nil {
			// The registry accepted an extension the domain has no type for.
			fileType = domain.FileType(strings.ToLower(filepath.Ext(path)))
		} else {
			doc, err = s.load(ctx, path, fileType)
		}
		if err != nil {
			logger.Warn("Failed to load %s: %v", filepath.Base(path), err)
			doc = domain.FailedDocument(path, fileType, err)
			failed++
		}
		docs = append(docs, doc)
	}

	logger.Info("Loaded %d documents (%d failed)", len(docs), failed)
	return docs, nil
}

// Refresh reloads dir from scratch. Nothing from a previous load is
// reused; the caller replaces its collection wholesale.
func (s *DocumentStore) Refresh(ctx context.Context, dir string) ([]domain.Document, error) {
	return s.LoadAll(ctx, dir)
}

// load reads and extracts a single file.
func (s *DocumentStore) load(ctx context.Context, path string, fileType domain.FileType) (doc domain.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ExtractionError{Path: path, Err: fmt.Errorf("extractor panic: %v", r)}
		}
	}()

	if s.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.extractTimeout)
		defer cancel()
	}

	raw, err := s.source.Read(ctx, path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading file: %w", err)
	}

	extractor, err := s.registry.For(fileType.String())
	if err != nil {
		return domain.Document{}, err
	}

	start := time.Now()
	text, err := extractor.Extract(ctx, raw)
	if err != nil {
		return domain.Document{}, &domain.ExtractionError{Path: path, Err: err}
	}
	logger.Debug("Extracted %s: %d chars in %s", raw.Name(), len(text), time.Since(start).Round(time.Millisecond))

	return domain.NewDocument(path, fileType, text)
}
