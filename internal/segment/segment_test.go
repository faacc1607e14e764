package segment

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		seg     Segment
		wantErr bool
	}{
		{
			name: "valid",
			seg:  Segment{ID: 1, Start: 0, End: time.Second, Text: "Hi"},
		},
		{
			name:    "end before start",
			seg:     Segment{ID: 1, Start: 2 * time.Second, End: time.Second, Text: "Hi"},
			wantErr: true,
		},
		{
			name:    "zero duration",
			seg:     Segment{ID: 1, Start: time.Second, End: time.Second, Text: "Hi"},
			wantErr: true,
		},
		{
			name:    "negative start",
			seg:     Segment{ID: 1, Start: -time.Second, End: time.Second, Text: "Hi"},
			wantErr: true,
		},
		{
			name:    "whitespace text",
			seg:     Segment{ID: 1, Start: 0, End: time.Second, Text: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueries(t *testing.T) {
	seg := Segment{ID: 1, Start: time.Second, End: 3 * time.Second, Text: "Hi"}

	if seg.Duration() != 2*time.Second {
		t.Errorf("Duration() = %v, want 2s", seg.Duration())
	}
	if seg.Midpoint() != 2*time.Second {
		t.Errorf("Midpoint() = %v, want 2s", seg.Midpoint())
	}
	if !seg.Contains(time.Second) {
		t.Error("Contains(start) should be true")
	}
	if seg.Contains(3 * time.Second) {
		t.Error("Contains(end) should be false, end is exclusive")
	}
	if !seg.Contains(2 * time.Second) {
		t.Error("Contains(midpoint) should be true")
	}
}

func TestOverlaps(t *testing.T) {
	a := Segment{Start: 0, End: 2 * time.Second}
	b := Segment{Start: time.Second, End: 3 * time.Second}
	c := Segment{Start: 2 * time.Second, End: 4 * time.Second}

	if !a.Overlaps(b) {
		t.Error("a should overlap b")
	}
	if a.Overlaps(c) {
		t.Error("touching segments should not overlap")
	}
}

func TestFromRaw(t *testing.T) {
	raw := Raw{
		Start: 1.5,
		End:   3.0,
		Text:  "  Hello world  ",
		Words: []RawWord{
			{Text: "Hello", Start: 1.5, End: 2.2},
			{Text: "  ", Start: 2.2, End: 2.3},
			{Text: "world", Start: 2.3, End: 3.0},
		},
	}

	seg := FromRaw(raw)
	if seg.Start != 1500*time.Millisecond {
		t.Errorf("start = %v, want 1.5s", seg.Start)
	}
	if seg.End != 3*time.Second {
		t.Errorf("end = %v, want 3s", seg.End)
	}
	if seg.Text != "Hello world" {
		t.Errorf("text = %q, want trimmed", seg.Text)
	}
	if len(seg.Words) != 2 {
		t.Fatalf("words = %d, want 2 (blank word dropped)", len(seg.Words))
	}
	if seg.Words[1].Text != "world" {
		t.Errorf("word 1 = %q, want 'world'", seg.Words[1].Text)
	}
}

func TestClone(t *testing.T) {
	seg := Segment{
		ID: 1, Start: 0, End: time.Second, Text: "Hi",
		Words: []Word{{Text: "Hi", Start: 0, End: time.Second}},
	}
	dup := seg.Clone()
	dup.Words[0].Text = "changed"
	if seg.Words[0].Text != "Hi" {
		t.Error("Clone shares word slice with original")
	}
}
