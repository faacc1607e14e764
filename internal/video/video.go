package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpegbin "github.com/Tuguberk/ai-subtitle-creator/internal/ffmpeg"
)

// media file information as reported by ffprobe
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	Rotation  int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation int `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects a media file and returns its duration, dimensions and
// rotation metadata. Width and height are swapped for videos rotated a
// quarter turn so callers always see display dimensions.
func Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: path}

	if probe.Format.Duration != "" {
		var seconds float64
		if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if info.Codec != "" {
				continue
			}
			info.Codec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height
			info.FrameRate = parseFrameRate(stream.AvgFrameRate)

			rotation := 0
			for _, sd := range stream.SideDataList {
				if sd.Rotation != 0 {
					rotation = sd.Rotation
				}
			}
			if stream.Tags.Rotate != "" {
				if r, err := strconv.Atoi(stream.Tags.Rotate); err == nil {
					rotation = r
				}
			}
			info.Rotation = rotation
		case "audio":
			info.HasAudio = true
		}
	}

	if info.Codec == "" {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	if r := info.Rotation; r == 90 || r == -90 || r == 270 || r == -270 {
		info.Width, info.Height = info.Height, info.Width
	}

	return info, nil
}

// PreviewDimensions halves the display dimensions, clamped to even
// numbers as required by most encoders.
func (i *Info) PreviewDimensions() (int, int) {
	return (i.Width / 2) &^ 1, (i.Height / 2) &^ 1
}

// average frame rate arrives as a fraction like "30000/1001"
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return 0
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// checks if the file is a subtitle document based on extension
func IsSubtitleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt", ".ass", ".ssa":
		return true
	}
	return false
}
