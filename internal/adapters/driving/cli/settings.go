package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var settingsAnnotations = map[string]string{annotationSettings: "true"}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change docqa settings stored in config.toml.

Environment variables DOCQA_DOCUMENTS_DIR, DOCQA_CACHE_DIR and
DOCQA_CACHE_BACKEND override the file. A .env file in the working
directory is loaded first.`,
	Annotations: settingsAnnotations,
	RunE:        runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "Show effective settings",
	Args:        cobra.NoArgs,
	Annotations: settingsAnnotations,
	RunE:        runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:         "get [key]",
	Short:       "Show one setting",
	Args:        cobra.ExactArgs(1),
	Annotations: settingsAnnotations,
	RunE:        runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Parses value according to the type of key and saves it.

Examples:
  docqa settings set documents.dir ~/papers
  docqa settings set cache.backend sqlite
  docqa settings set retrieval.top_k 5
  docqa settings set ocr.enabled false
  docqa settings set watch.debounce 2s`,
	Args:        cobra.ExactArgs(2),
	Annotations: settingsAnnotations,
	RunE:        runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, key := range settingsService.Keys() {
		value, err := settingsService.Value(key)
		if err != nil {
			value = mutedStyle.Render("(invalid: " + err.Error() + ")")
		}
		fmt.Fprintf(w, "%s\t%s\n", key, value)
	}
	return w.Flush()
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}
