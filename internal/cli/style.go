package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tuguberk/ai-subtitle-creator/internal/codec"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
)

var styleCmd = &cobra.Command{
	Use:   "style [segments_file]",
	Short: "Apply a theme to segments and write a styled ASS script",
	Long: `Apply a visual theme to timed segments and write a styled ASS
subtitle script with karaoke word highlighting and animations.

Input may be SRT, ASS, or a JSON array of raw transcription segments
with optional word-level timestamps.

Examples:
  autosub style segments.json -o styled.ass --theme Karaoke
  autosub style subs.srt -o styled.ass --theme "Reel Bold"
  autosub style subs.srt -o styled.ass --theme my-theme.yaml --play-res 1920x1080`,
	Args: cobra.ExactArgs(1),
	RunE: runStyle,
}

func init() {
	rootCmd.AddCommand(styleCmd)

	styleCmd.Flags().
		String("overlap", "trim", "Overlap handling during ingest (reject, trim, allow)")
	styleCmd.Flags().
		String("play-res", "1080x1920", "Script canvas resolution as WIDTHxHEIGHT")
	styleCmd.Flags().
		String("title", "", "Script title (defaults to the input file name)")
}

func runStyle(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	themeRef, _ := cmd.Flags().GetString("theme")
	policyName, _ := cmd.Flags().GetString("overlap")
	playRes, _ := cmd.Flags().GetString("play-res")
	title, _ := cmd.Flags().GetString("title")

	if outputPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = base + ".ass"
	}

	width, height, err := parsePlayRes(playRes)
	if err != nil {
		return err
	}

	th, err := theme.Load(themeRef)
	if err != nil {
		return err
	}

	segments, err := ingestFile(inputPath, policyName)
	if err != nil {
		return err
	}

	logger.Infow("Styling subtitles",
		"input", inputPath,
		"output", outputPath,
		"theme", th.Name,
		"segments", len(segments),
	)

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	}

	events := theme.NewResolver(th).Resolve(segments)
	opts := codec.ASSOptions{Title: title, PlayResX: width, PlayResY: height}
	if err := codec.WriteASS(events, outputPath, opts); err != nil {
		return fmt.Errorf("styling failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Styled subtitles written: %s\n", absOutput)
	fmt.Printf("  Theme: %s\n", th.Name)
	fmt.Printf("  Events: %d\n", len(events))

	return nil
}

func parsePlayRes(s string) (int, int, error) {
	var width, height int
	if _, err := fmt.Sscanf(s, "%dx%d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: expected WIDTHxHEIGHT", s)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q: dimensions must be positive", s)
	}
	return width, height, nil
}
