package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/index/tfidf"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/disk"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors/docx"
	"github.com/custodia-labs/docqa/internal/extractors/html"
	"github.com/custodia-labs/docqa/internal/extractors/markdown"
	"github.com/custodia-labs/docqa/internal/extractors/ocr"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
	"github.com/custodia-labs/docqa/internal/logger"
)

// wire builds the application services from configuration.
// When the settings are invalid it still returns the settings service
// so they can be inspected and fixed.
func wire(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, filepath.Dir(configStore.Path()))

	settings, err := settingsService.Get()
	if err != nil {
		return &cli.Services{Settings: settingsService}, err
	}

	blobs, err := openBlobStore(settings)
	if err != nil {
		return &cli.Services{Settings: settingsService}, err
	}
	cache := services.NewContentCache(blobs)

	var engine driven.OCREngine
	if settings.OCR.Enabled {
		tesseract := ocr.New(ocr.Config{
			MaxPages:       settings.OCR.MaxPages,
			DPI:            settings.OCR.DPI,
			Language:       settings.OCR.Language,
			PagesPerSecond: settings.OCR.PagesPerSecond,
		})
		if err := tesseract.CheckAvailable(); err != nil {
			logger.Warn("OCR disabled: %v", err)
		} else {
			engine = services.NewExtractionCache(cache).Wrap(tesseract)
		}
	}

	registry := services.NewExtractorRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(engine),
	)

	store := services.NewDocumentStore(filesystem.NewSource(), registry)
	store.SetExtractTimeout(settings.ExtractTimeout)

	indexes := services.NewIndexCache(cache,
		tfidf.NewWithOptions(settings.MaxFeatures, tfidf.EnglishStopWords()))

	dir := opts.DocumentsDir
	if dir == "" {
		dir = settings.DocumentsDir
	}
	library := services.NewLibrary(dir, store, indexes)

	retriever := services.NewHybridRetriever(library)
	retriever.SetTopK(settings.TopK)
	retriever.SetMinScore(settings.MinScore)

	logger.Debug("Using %s cache backend in %s", settings.CacheBackend, settings.CacheDir)

	return &cli.Services{
		Library:   library,
		Retrieval: retriever,
		Cache:     cache,
		Settings:  settingsService,
		NewWatcher: func() (cli.Watcher, error) {
			return filesystem.NewWatcher(library.Dir(), registry.Extensions(), settings.WatchDebounce), nil
		},
		Close: blobs.Close,
	}, nil
}

// openBlobStore opens the cache backend named in settings.
func openBlobStore(settings domain.Settings) (driven.BlobStore, error) {
	switch settings.CacheBackend {
	case domain.CacheBackendFile:
		store, err := disk.NewStore(settings.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("opening file cache: %w", err)
		}
		return store, nil
	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(settings.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return store, nil
	case domain.CacheBackendMemory:
		return memory.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", domain.ErrInvalidInput, settings.CacheBackend)
	}
}
