package segment

import (
	"fmt"
	"strings"
	"time"
)

// opaque timeline handle; ids are allocated monotonically and never reused
type ID int64

// None marks the absence of a segment id.
const None ID = 0

// single word with its own time span, used for karaoke timing
type Word struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// represents one atomic timed unit of transcript text
type Segment struct {
	ID         ID
	Start      time.Duration
	End        time.Duration
	Text       string
	Confidence float64
	Words      []Word
}

// raw timed text as delivered by the transcription collaborator,
// timestamps in fractional seconds
type Raw struct {
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence,omitempty"`
	Words      []RawWord `json:"words,omitempty"`
}

type RawWord struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// converts a raw ingestion record to an unvalidated segment without an id
func FromRaw(r Raw) Segment {
	seg := Segment{
		Start:      time.Duration(r.Start * float64(time.Second)),
		End:        time.Duration(r.End * float64(time.Second)),
		Text:       strings.TrimSpace(r.Text),
		Confidence: r.Confidence,
	}
	for _, w := range r.Words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		seg.Words = append(seg.Words, Word{
			Text:  text,
			Start: time.Duration(w.Start * float64(time.Second)),
			End:   time.Duration(w.End * float64(time.Second)),
		})
	}
	return seg
}

// checks segment bounds and text; returns a descriptive error on the
// first violated rule
func (s Segment) Validate() error {
	if s.Start < 0 || s.End < 0 {
		return fmt.Errorf("segment %d: negative timestamp (start=%v end=%v)", s.ID, s.Start, s.End)
	}
	if s.End <= s.Start {
		return fmt.Errorf("segment %d: end %v must be after start %v", s.ID, s.End, s.Start)
	}
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("segment %d: empty text", s.ID)
	}
	return nil
}

func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

func (s Segment) Midpoint() time.Duration {
	return s.Start + (s.End-s.Start)/2
}

// reports whether the timestamp falls inside the segment's span,
// start inclusive, end exclusive
func (s Segment) Contains(ts time.Duration) bool {
	return ts >= s.Start && ts < s.End
}

func (s Segment) Overlaps(other Segment) bool {
	return s.Start < other.End && other.Start < s.End
}

// deep copy so callers can't mutate shared word slices
func (s Segment) Clone() Segment {
	out := s
	if len(s.Words) > 0 {
		out.Words = make([]Word, len(s.Words))
		copy(out.Words, s.Words)
	}
	return out
}
