// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationStandalone marks commands that run without services.
const annotationStandalone = "standalone"

// annotationSettings marks commands that only need the settings service.
const annotationSettings = "settings"

// Watcher delivers debounced batches of document directory changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan filesystem.Batch, error)
	Close() error
}

// Services holds everything the commands drive.
type Services struct {
	Library   driving.LibraryService
	Retrieval driving.RetrievalService
	Cache     driving.CacheService
	Settings  driving.SettingsService

	// NewWatcher creates a watcher on the library's directory.
	NewWatcher func() (Watcher, error)

	// Close releases resources such as the cache store.
	Close func() error
}

// Options are the global flag values passed to the wiring function.
type Options struct {
	ConfigDir    string
	DocumentsDir string
}

// WiringFunc builds services from global options. It may return partial
// services together with an error, e.g. settings when the rest is
// misconfigured.
type WiringFunc func(opts Options) (*Services, error)

// Global flags.
var (
	configDir    string
	documentsDir string
	verbose      bool
)

// Services set by wiring or tests.
var (
	libraryService   driving.LibraryService
	retrievalService driving.RetrievalService
	cacheService     driving.CacheService
	settingsService  driving.SettingsService
	newWatcher       func() (Watcher, error)
	closeServices    func() error
)

var wiring WiringFunc

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Retrieve answers from a local document library",
	Long: `docqa loads PDF, Word, HTML, Markdown and text files from a directory,
caches their extracted text and a TF-IDF index, and ranks documents for a
question with hybrid exact and vector matching.

The ranked documents can be printed, formatted as context for an answer
generator, or served to AI assistants over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docqa)")
	rootCmd.PersistentFlags().StringVarP(&documentsDir, "dir", "d", "", "document directory (overrides documents.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

// SetWiring installs the function that builds services before a command runs.
func SetWiring(w WiringFunc) {
	wiring = w
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeAll(); err == nil {
		err = cerr
	}
	return err
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetColor(term.IsTerminal(int(os.Stderr.Fd())))

	if wiring == nil || cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}
	if libraryService != nil || settingsService != nil {
		return nil
	}

	svc, err := wiring(Options{ConfigDir: configDir, DocumentsDir: documentsDir})
	if svc != nil {
		useServices(svc)
	}
	if err != nil {
		if cmd.Annotations[annotationSettings] == "true" && settingsService != nil {
			logger.Warn("Configuration is invalid: %v", err)
			return nil
		}
		return fmt.Errorf("initialising docqa: %w", err)
	}
	return nil
}

func closeAll() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func useServices(svc *Services) {
	libraryService = svc.Library
	retrievalService = svc.Retrieval
	cacheService = svc.Cache
	settingsService = svc.Settings
	newWatcher = svc.NewWatcher
	closeServices = svc.Close
}

// refreshLibrary loads the library for commands that need a corpus.
func refreshLibrary(ctx context.Context) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	snap, err := libraryService.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("loading documents from %s: %w", libraryService.Dir(), err)
	}
	logger.Info("Loaded %d documents from %s", snap.Len(), libraryService.Dir())
	return nil
}
