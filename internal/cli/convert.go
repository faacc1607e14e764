package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tuguberk/ai-subtitle-creator/internal/codec"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert between subtitle formats",
	Long: `Convert a subtitle file to another format.

Input may be SRT, ASS, or a JSON array of raw transcription segments.
The output format follows the output path extension. Converting to ASS
applies the selected theme.

Examples:
  autosub convert subs.srt -o subs.ass
  autosub convert subs.ass -o subs.srt
  autosub convert segments.json -o subs.srt --overlap trim`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		String("overlap", "trim", "Overlap handling during ingest (reject, trim, allow)")
	convertCmd.Flags().
		String("title", "", "Script title for ASS output (defaults to the input file name)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	themeRef, _ := cmd.Flags().GetString("theme")
	policyName, _ := cmd.Flags().GetString("overlap")
	title, _ := cmd.Flags().GetString("title")

	if outputPath == "" {
		return fmt.Errorf("output path is required: use --output")
	}

	segments, err := ingestFile(inputPath, policyName)
	if err != nil {
		return err
	}

	logger.Infow("Converting subtitles",
		"input", inputPath,
		"output", outputPath,
		"segments", len(segments),
	)

	switch ext := strings.ToLower(filepath.Ext(outputPath)); ext {
	case ".srt":
		if err := codec.WriteSRT(segments, outputPath); err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
	case ".ass", ".ssa":
		th, err := theme.Load(themeRef)
		if err != nil {
			return err
		}
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		}
		events := theme.NewResolver(th).Resolve(segments)
		if err := codec.WriteASS(events, outputPath, codec.ASSOptions{Title: title}); err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q: use srt or ass", ext)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles converted successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(segments))

	return nil
}
