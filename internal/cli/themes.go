package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the built-in themes",
	Long: `List the built-in theme presets with their key attributes.

A theme can be exported to YAML with --save, edited, and passed back to
any command through --theme.

Examples:
  autosub themes
  autosub themes --save Karaoke -o my-theme.yaml`,
	RunE: runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)

	themesCmd.Flags().String("save", "", "Write the named preset to the output path as YAML")
}

func runThemes(cmd *cobra.Command, args []string) error {
	saveName, _ := cmd.Flags().GetString("save")
	outputPath, _ := cmd.Flags().GetString("output")

	if saveName != "" {
		if outputPath == "" {
			return fmt.Errorf("output path is required with --save: use --output")
		}
		th, err := theme.Builtin(saveName)
		if err != nil {
			return err
		}
		if err := theme.SaveFile(th, outputPath); err != nil {
			return err
		}
		fmt.Printf("Theme %q written to %s\n", th.Name, outputPath)
		return nil
	}

	for _, th := range theme.Catalog() {
		karaoke := ""
		if th.Animation.Karaoke {
			karaoke = ", karaoke"
		}
		fmt.Printf("%-12s %s %d, %s/%s%s\n",
			th.Name,
			th.Font.Family, th.Font.Size,
			th.Layout.Position, th.Layout.Alignment,
			karaoke,
		)
	}
	return nil
}
