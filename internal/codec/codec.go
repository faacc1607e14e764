// Package codec translates between the timeline/style model and the two
// subtitle text formats: plain SRT and styled ASS. Encoding is
// deterministic; identical input always produces byte-identical output.
package codec

import (
	"errors"
	"fmt"
	"time"
)

// ErrEncodeInvariant marks an attempt to encode an inconsistent timeline.
// This is a programming fault in the caller, not a recoverable condition.
var ErrEncodeInvariant = errors.New("encode invariant violated")

// ParseError reports malformed subtitle text with the offending line
// number so the caller can decide whether to abort or skip.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// format tick sizes: SRT carries milliseconds, ASS carries centiseconds
const (
	tickSRT = time.Millisecond
	tickASS = 10 * time.Millisecond
)

// roundToTick snaps a duration to the nearest representable tick, ties
// rounding up. The one canonical rounding rule for both formats and both
// directions.
func roundToTick(d, tick time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return (d + tick/2) / tick * tick
}

// timestamp as HH:MM:SS,mmm (SRT)
func formatSRTTime(d time.Duration) string {
	d = roundToTick(d, tickSRT)
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	seconds := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms)
}

// timestamp as H:MM:SS.cc (ASS)
func formatASSTime(d time.Duration) string {
	d = roundToTick(d, tickASS)
	cs := d.Milliseconds() / 10
	hours := cs / 360_000
	cs %= 360_000
	minutes := cs / 6000
	cs %= 6000
	seconds := cs / 100
	cs %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, cs)
}
