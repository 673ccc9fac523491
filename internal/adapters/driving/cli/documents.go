package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Inspect the document library",
	Long:  `List the documents loaded from the document directory.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded documents",
	Long: `Loads the document directory and lists every document with its type and
extracted length. Files that failed to extract are listed with their
placeholder text.`,
	Args: cobra.NoArgs,
	RunE: runDocumentsList,
}

func init() {
	documentsListCmd.Flags().BoolVar(&documentsJSON, "json", false, "output documents as JSON")
	documentsCmd.AddCommand(documentsListCmd)
	rootCmd.AddCommand(documentsCmd)
}

// documentJSON is the JSON view of one document.
type documentJSON struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
	Length   int    `json:"length"`
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	if err := refreshLibrary(cmd.Context()); err != nil {
		return err
	}

	snap := libraryService.Current()
	docs := snap.Documents

	if documentsJSON {
		out := make([]documentJSON, len(docs))
		for i := range docs {
			out[i] = documentJSON{
				FileName: docs[i].FileName,
				FilePath: docs[i].FilePath,
				FileType: docs[i].FileType.String(),
				Length:   len([]rune(docs[i].Content)),
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found in %s\n", libraryService.Dir())
		return nil
	}

	cmd.Printf("Documents in %s:\n\n", libraryService.Dir())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tTYPE\tCHARS")
	for i := range docs {
		fmt.Fprintf(w, "  %s\t%s\t%d\n", docs[i].FileName, docs[i].FileType, len([]rune(docs[i].Content)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cmd.Println()
	cmd.Println(mutedStyle.Render(fmt.Sprintf("%d documents, snapshot %s", snap.Len(), snap.ID)))
	if snap.IndexErr != nil {
		cmd.Println(mutedStyle.Render("Index unavailable: " + snap.IndexErr.Error()))
	}
	return nil
}
