package cli

import (
	"github.com/Tuguberk/ai-subtitle-creator/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "autosub",
	Short: "Subtitle timeline editing and styled export",
	Long: `Autosub turns timed transcript segments into subtitle documents
and styled videos.

It converts between SRT and ASS, applies visual themes with karaoke
word highlighting, and burns subtitles into video with ffmpeg.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("theme", "t", "Default", "Theme: a built-in preset name or a YAML file path")
}
