package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tuguberk/ai-subtitle-creator/internal/export"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
	"github.com/Tuguberk/ai-subtitle-creator/internal/video"
)

var burnCmd = &cobra.Command{
	Use:   "burn [video_file] [segments_file]",
	Short: "Burn styled subtitles into a video",
	Long: `Render styled subtitles onto a video with ffmpeg.

The segments file may be SRT, ASS, or a JSON array of raw transcription
segments. The selected theme controls fonts, colors, layout, karaoke
highlighting and animations.

Examples:
  autosub burn video.mp4 subs.srt
  autosub burn video.mp4 segments.json -o styled.mp4 --theme "Reel Bold"
  autosub burn video.mp4 subs.srt --preview`,
	Args: cobra.ExactArgs(2),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	burnCmd.Flags().
		String("overlap", "trim", "Overlap handling during ingest (reject, trim, allow)")
	burnCmd.Flags().
		Bool("preview", false, "Render at half resolution for a quick preview")
	burnCmd.Flags().
		String("encoder", "", "Video encoder passed to ffmpeg (default libx264)")
}

func runBurn(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	segmentsPath := args[1]

	outputPath, _ := cmd.Flags().GetString("output")
	themeRef, _ := cmd.Flags().GetString("theme")
	policyName, _ := cmd.Flags().GetString("overlap")
	preview, _ := cmd.Flags().GetBool("preview")
	encoder, _ := cmd.Flags().GetString("encoder")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !video.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected video file)", filepath.Ext(videoPath))
	}

	if outputPath == "" {
		base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		suffix := "_subtitled"
		if preview {
			suffix = "_preview"
		}
		outputPath = base + suffix + filepath.Ext(videoPath)
	}

	th, err := theme.Load(themeRef)
	if err != nil {
		return err
	}

	segments, err := ingestFile(segmentsPath, policyName)
	if err != nil {
		return err
	}
	events := theme.NewResolver(th).Resolve(segments)

	logger.Infow("Burning subtitles",
		"video", videoPath,
		"segments", segmentsPath,
		"output", outputPath,
		"theme", th.Name,
		"preview", preview,
	)

	pipeline := export.NewPipeline(export.NewFFmpegRunner(logger), logger)

	done := make(chan export.Progress, 1)
	onProgress := func(p export.Progress) {
		if p.State.Terminal() {
			done <- p
			return
		}
		fmt.Printf("\r%-11s %5.1f%%  %s", p.State, p.Percent, p.Message)
	}

	_, err = pipeline.Submit(context.Background(), export.Request{
		Kind:       export.KindBurnIn,
		Source:     videoPath,
		OutputPath: outputPath,
		Events:     events,
		Title:      th.Name,
		Encoder:    encoder,
		Preview:    preview,
	}, onProgress)
	if err != nil {
		return err
	}

	final := <-done
	fmt.Println()

	switch final.State {
	case export.StateSucceeded:
		absOutput, _ := filepath.Abs(outputPath)
		fmt.Printf("Subtitles burned successfully: %s\n", absOutput)
		return nil
	case export.StateCancelled:
		return fmt.Errorf("export cancelled")
	default:
		return fmt.Errorf("export failed: %w", final.Err)
	}
}
