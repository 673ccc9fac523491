package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the library when documents change",
	Long: `Loads the document directory, then watches it and refreshes the
library and caches whenever supported files are created, modified or
removed. Bursts of changes are debounced (watch.debounce).

Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if libraryService == nil || newWatcher == nil {
		return errors.New("library service not configured")
	}

	ctx := cmd.Context()
	snap, err := libraryService.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	cmd.Printf("Watching %s (%d documents)\n", libraryService.Dir(), snap.Len())

	watcher, err := newWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	batches, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			reportBatch(cmd, batch)

			snap, err := libraryService.Refresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("Refresh failed: %v", err)
				cmd.PrintErrf("Refresh failed: %v\n", err)
				continue
			}
			cmd.Printf("Snapshot %s: %d documents\n", snap.ID, snap.Len())
		}
	}
}

func reportBatch(cmd *cobra.Command, batch filesystem.Batch) {
	for _, c := range batch.Changes {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("  %s %s", c.Kind, c.Path)))
	}
}
