package video

import "testing"

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPreviewDimensions(t *testing.T) {
	info := &Info{Width: 1080, Height: 1918}
	w, h := info.PreviewDimensions()
	if w != 540 || h != 958 {
		t.Errorf("got %dx%d, want 540x958", w, h)
	}

	// odd halves clamp down to even
	info = &Info{Width: 1082, Height: 1080}
	w, h = info.PreviewDimensions()
	if w%2 != 0 || h%2 != 0 {
		t.Errorf("dimensions not even: %dx%d", w, h)
	}
}

func TestFileKindChecks(t *testing.T) {
	if !IsVideoFile("clip.MP4") {
		t.Error("expected .MP4 to be a video file")
	}
	if IsVideoFile("notes.txt") {
		t.Error("expected .txt not to be a video file")
	}
	if !IsSubtitleFile("out.ass") || !IsSubtitleFile("out.srt") {
		t.Error("expected .ass and .srt to be subtitle files")
	}
	if IsSubtitleFile("clip.mp4") {
		t.Error("expected .mp4 not to be a subtitle file")
	}
}
