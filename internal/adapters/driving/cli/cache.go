package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/services"
)

var (
	cacheExtraction bool
	cacheIndex      bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the extraction and index caches",
	Long: `docqa caches OCR text per file and the TF-IDF index per corpus, keyed by
a SHA-256 fingerprint of their inputs. Entries become invalid as soon as
the inputs change, so clearing the cache is never required for
correctness.`,
}

var cacheBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Pre-warm the caches",
	Long:  `Loads every document and builds the index so later searches start warm.`,
	Args:  cobra.NoArgs,
	RunE:  runCacheBuild,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cache entries",
	Long: `Removes cached entries. Without flags both the extraction and the
index entries are removed.`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	cacheListCmd.Flags().BoolVar(&cacheExtraction, "extraction", false, "only extraction entries")
	cacheListCmd.Flags().BoolVar(&cacheIndex, "index", false, "only index entries")
	cacheClearCmd.Flags().BoolVar(&cacheExtraction, "extraction", false, "only extraction entries")
	cacheClearCmd.Flags().BoolVar(&cacheIndex, "index", false, "only index entries")

	cacheCmd.AddCommand(cacheBuildCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cachePrefixes returns the key prefixes selected by the flags.
func cachePrefixes() []string {
	switch {
	case cacheExtraction && !cacheIndex:
		return []string{services.ExtractionKeyPrefix}
	case cacheIndex && !cacheExtraction:
		return []string{services.IndexKeyPrefix}
	default:
		return []string{services.ExtractionKeyPrefix, services.IndexKeyPrefix}
	}
}

func runCacheBuild(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	start := time.Now()
	snap, err := libraryService.Prewarm(cmd.Context())
	if err != nil {
		return fmt.Errorf("pre-warming cache: %w", err)
	}

	cmd.Printf("Loaded %d documents from %s\n", snap.Len(), libraryService.Dir())
	switch {
	case snap.IndexErr != nil:
		cmd.Printf("Index not built: %v\n", snap.IndexErr)
	case snap.IndexCached:
		cmd.Printf("Index already cached (%s)\n", shortFingerprint(snap.IndexFingerprint))
	default:
		cmd.Printf("Index built and cached (%s)\n", shortFingerprint(snap.IndexFingerprint))
	}
	cmd.Println(mutedStyle.Render(fmt.Sprintf("Done in %s", time.Since(start).Round(time.Millisecond))))
	return nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	total := 0
	for _, prefix := range cachePrefixes() {
		keys, err := cacheService.Keys(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			cmd.Println(k)
		}
		total += len(keys)
	}

	if total == 0 {
		cmd.Println("Cache is empty.")
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	total := 0
	for _, prefix := range cachePrefixes() {
		n, err := cacheService.Clear(cmd.Context(), prefix)
		total += n
		if err != nil {
			return fmt.Errorf("clearing %s entries: %w", prefix, err)
		}
	}
	cmd.Printf("Removed %d cache entries\n", total)
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
