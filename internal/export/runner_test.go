package export

import (
	"testing"
	"time"
)

func TestParseProgressLine(t *testing.T) {
	total := 10 * time.Second

	update, ok := parseProgressLine("out_time_us=5000000", total)
	if !ok || update.Percent != 50 {
		t.Errorf("out_time_us: got %+v ok=%v", update, ok)
	}

	// out_time_ms carries microseconds too
	update, ok = parseProgressLine("out_time_ms=2500000", total)
	if !ok || update.Percent != 25 {
		t.Errorf("out_time_ms: got %+v ok=%v", update, ok)
	}

	update, ok = parseProgressLine("progress=end", total)
	if !ok || update.Percent != 100 {
		t.Errorf("progress=end: got %+v ok=%v", update, ok)
	}

	// progress caps below 100 until the end marker
	update, ok = parseProgressLine("out_time_us=99999999", total)
	if !ok || update.Percent != 99.9 {
		t.Errorf("overshoot: got %+v ok=%v", update, ok)
	}

	if _, ok := parseProgressLine("progress=continue", total); ok {
		t.Error("progress=continue should not produce an update")
	}
	if _, ok := parseProgressLine("frame=120", total); ok {
		t.Error("unrelated keys should not produce an update")
	}
	if _, ok := parseProgressLine("out_time_us=garbage", total); ok {
		t.Error("unparsable value should not produce an update")
	}
}

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/subs.ass", "/tmp/subs.ass"},
		{`C:\videos\subs.ass`, `C\:\\videos\\subs.ass`},
		{"/tmp/it's.ass", `/tmp/it\'s.ass`},
	}
	for _, tt := range tests {
		if got := escapeFilterPath(tt.in); got != tt.want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
