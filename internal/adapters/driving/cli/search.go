package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchContext bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the document library",
	Long: `Ranks documents in the library for a question.

Combines exact phrase matching with TF-IDF vector similarity. When the
full question matches nothing, docqa retries with its key terms and then
with each significant term on its own.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchContext, "context", false, "print results as answer context")
	searchCmd.MarkFlagsMutuallyExclusive("json", "context")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if err := refreshLibrary(cmd.Context()); err != nil {
		return err
	}

	if searchContext {
		cmd.Print(retrievalService.Context(cmd.Context(), query, searchLimit))
		return nil
	}

	results := retrievalService.Retrieve(cmd.Context(), query, searchLimit)
	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// searchResultJSON is the JSON view of one result.
type searchResultJSON struct {
	FileName  string  `json:"file_name"`
	FilePath  string  `json:"file_path"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	MatchKind string  `json:"match_kind"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		out[i] = searchResultJSON{
			FileName:  results[i].Document.FileName,
			FilePath:  results[i].Document.FilePath,
			Content:   results[i].Document.Content,
			Score:     results[i].Score,
			MatchKind: results[i].MatchKind.String(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No relevant documents found.")
		return nil
	}

	width := outputWidth(cmd.OutOrStdout()) - 6

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] name (score, kind)
		cmd.Printf("  [%d] %s %s %s\n",
			i+1,
			nameStyle.Render(results[i].Document.FileName),
			scoreStyle.Render(fmt.Sprintf("(%.3f)", results[i].Score)),
			kindStyle.Render(results[i].MatchKind.String()),
		)
		for _, line := range snippet(results[i].Document.Content, width, snippetLines) {
			cmd.Printf("      %s\n", line)
		}
		cmd.Println()
	}
	return nil
}
