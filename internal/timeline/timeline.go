package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
)

// rule governing whether two segments may share time, fixed per session
type OverlapPolicy int

const (
	// PolicyReject refuses colliding inserts and retimes.
	PolicyReject OverlapPolicy = iota
	// PolicyTrim clips the incoming segment against its neighbors.
	PolicyTrim
	// PolicyAllow permits overlapping segments.
	PolicyAllow
)

// Timeline is an ordered collection of segments owned by one editing
// session. All mutations go through its methods and are all-or-nothing:
// a rejected operation leaves no partial state behind.
type Timeline struct {
	policy   OverlapPolicy
	segments []segment.Segment
	nextID   segment.ID
	history  history
}

func New(policy OverlapPolicy) *Timeline {
	return &Timeline{policy: policy, nextID: 1}
}

func (t *Timeline) Policy() OverlapPolicy {
	return t.policy
}

func (t *Timeline) allocID() segment.ID {
	id := t.nextID
	t.nextID++
	return id
}

// Ingest replaces the timeline content with a normalized batch of raw
// segments. Empty-text records are dropped, invalid bounds fail the whole
// batch with a ValidationError listing the offending indices, and overlaps
// are resolved per the session policy. History is cleared.
func (t *Timeline) Ingest(batch []segment.Raw) ([]segment.Segment, error) {
	type candidate struct {
		seg   segment.Segment
		index int
	}

	var verr ValidationError
	candidates := make([]candidate, 0, len(batch))
	for i, raw := range batch {
		seg := segment.FromRaw(raw)
		if seg.Text == "" {
			// empty segments are dropped during ingestion, not errored
			continue
		}
		if err := seg.Validate(); err != nil {
			verr.Indices = append(verr.Indices, i)
			verr.Reasons = append(verr.Reasons, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		candidates = append(candidates, candidate{seg: seg, index: i})
	}
	if len(verr.Indices) > 0 {
		return nil, &verr
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].seg.Start < candidates[j].seg.Start
	})

	normalized := make([]segment.Segment, 0, len(candidates))
	for _, c := range candidates {
		seg := c.seg
		if t.policy != PolicyAllow && len(normalized) > 0 {
			prev := &normalized[len(normalized)-1]
			if seg.Start < prev.End {
				if t.policy == PolicyReject {
					verr.Indices = append(verr.Indices, c.index)
					verr.Reasons = append(verr.Reasons,
						fmt.Sprintf("record %d: overlaps previous segment", c.index))
					continue
				}
				// PolicyTrim: clip the earlier segment back to the new start
				if seg.Start <= prev.Start {
					verr.Indices = append(verr.Indices, c.index)
					verr.Reasons = append(verr.Reasons,
						fmt.Sprintf("record %d: fully covers previous segment", c.index))
					continue
				}
				prev.End = seg.Start
			}
		}
		normalized = append(normalized, seg)
	}
	if len(verr.Indices) > 0 {
		return nil, &verr
	}

	for i := range normalized {
		normalized[i].ID = t.allocID()
	}

	t.segments = normalized
	t.history.reset()
	return t.copySegments(), nil
}

// Insert adds a segment preserving sort order. Under the default policy a
// collision fails with ErrOverlapConflict; under PolicyTrim the incoming
// segment is clipped to the free gap.
func (t *Timeline) Insert(seg segment.Segment) (segment.Segment, error) {
	seg.ID = 0
	if err := seg.Validate(); err != nil {
		return segment.Segment{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if t.policy != PolicyAllow {
		adjusted, err := t.fitToNeighbors(seg, segment.None)
		if err != nil {
			return segment.Segment{}, err
		}
		seg = adjusted
	}

	seg.ID = t.allocID()
	t.insertSorted(seg)
	t.history.record(
		func() { t.removeByID(seg.ID) },
		func() { t.insertSorted(seg) },
	)
	return seg.Clone(), nil
}

// Split divides a segment at a timestamp strictly inside its span. Both
// halves get fresh ids. Callers may supply the text for each half; a
// blank argument keeps the original text, so a split can never produce
// an empty segment.
func (t *Timeline) Split(id segment.ID, at time.Duration, firstText, secondText string) (segment.Segment, segment.Segment, error) {
	idx, ok := t.indexOf(id)
	if !ok {
		return segment.Segment{}, segment.Segment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	orig := t.segments[idx]
	if at <= orig.Start || at >= orig.End {
		return segment.Segment{}, segment.Segment{}, fmt.Errorf(
			"%w: split point %v outside segment span %v-%v", ErrOutOfRange, at, orig.Start, orig.End)
	}

	if firstText = strings.TrimSpace(firstText); firstText == "" {
		firstText = orig.Text
	}
	if secondText = strings.TrimSpace(secondText); secondText == "" {
		secondText = orig.Text
	}

	first := segment.Segment{ID: t.allocID(), Start: orig.Start, End: at, Text: firstText, Confidence: orig.Confidence}
	second := segment.Segment{ID: t.allocID(), Start: at, End: orig.End, Text: secondText, Confidence: orig.Confidence}
	for _, w := range orig.Words {
		if w.Start < at {
			first.Words = append(first.Words, w)
		} else {
			second.Words = append(second.Words, w)
		}
	}

	t.removeByID(orig.ID)
	t.insertSorted(first)
	t.insertSorted(second)
	t.history.record(
		func() {
			t.removeByID(first.ID)
			t.removeByID(second.ID)
			t.insertSorted(orig)
		},
		func() {
			t.removeByID(orig.ID)
			t.insertSorted(first)
			t.insertSorted(second)
		},
	)
	return first.Clone(), second.Clone(), nil
}

// Merge joins segments that are contiguous in timeline order into one
// segment spanning min-start to max-end, text joined with single spaces.
func (t *Timeline) Merge(ids []segment.ID) (segment.Segment, error) {
	if len(ids) < 2 {
		return segment.Segment{}, fmt.Errorf("%w: merge needs at least two segments", ErrValidation)
	}

	indices := make([]int, 0, len(ids))
	for _, id := range ids {
		idx, ok := t.indexOf(id)
		if !ok {
			return segment.Segment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		indices = append(indices, idx)
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			return segment.Segment{}, fmt.Errorf(
				"%w: ids %d and %d are not contiguous", ErrNonAdjacent, ids[i-1], ids[i])
		}
	}

	originals := make([]segment.Segment, len(indices))
	for i, idx := range indices {
		originals[i] = t.segments[idx]
	}

	merged := segment.Segment{
		ID:    t.allocID(),
		Start: originals[0].Start,
		End:   originals[0].End,
	}
	texts := make([]string, 0, len(originals))
	for _, o := range originals {
		if o.Start < merged.Start {
			merged.Start = o.Start
		}
		if o.End > merged.End {
			merged.End = o.End
		}
		texts = append(texts, o.Text)
		merged.Words = append(merged.Words, o.Words...)
	}
	merged.Text = strings.Join(texts, " ")

	for _, o := range originals {
		t.removeByID(o.ID)
	}
	t.insertSorted(merged)
	t.history.record(
		func() {
			t.removeByID(merged.ID)
			for _, o := range originals {
				t.insertSorted(o)
			}
		},
		func() {
			for _, o := range originals {
				t.removeByID(o.ID)
			}
			t.insertSorted(merged)
		},
	)
	return merged.Clone(), nil
}

// Shift moves a segment by delta, keeping its duration.
func (t *Timeline) Shift(id segment.ID, delta time.Duration) (segment.Segment, error) {
	idx, ok := t.indexOf(id)
	if !ok {
		return segment.Segment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	orig := t.segments[idx]
	return t.Retime(id, orig.Start+delta, orig.End+delta)
}

// Retime replaces a segment's bounds. Colliding bounds fail with
// ErrOverlapConflict under the non-overlap policies.
func (t *Timeline) Retime(id segment.ID, newStart, newEnd time.Duration) (segment.Segment, error) {
	idx, ok := t.indexOf(id)
	if !ok {
		return segment.Segment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	orig := t.segments[idx]

	updated := orig
	updated.Start = newStart
	updated.End = newEnd
	if err := updated.Validate(); err != nil {
		return segment.Segment{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if t.policy != PolicyAllow {
		for _, other := range t.segments {
			if other.ID == id {
				continue
			}
			if updated.Overlaps(other) {
				return segment.Segment{}, fmt.Errorf(
					"%w: new bounds %v-%v collide with segment %d", ErrOverlapConflict, newStart, newEnd, other.ID)
			}
		}
	}

	t.removeByID(orig.ID)
	t.insertSorted(updated)
	t.history.record(
		func() {
			t.removeByID(updated.ID)
			t.insertSorted(orig)
		},
		func() {
			t.removeByID(orig.ID)
			t.insertSorted(updated)
		},
	)
	return updated.Clone(), nil
}

// Remove deletes a segment. Removing an absent id is a no-op and reports
// false rather than an error.
func (t *Timeline) Remove(id segment.ID) bool {
	idx, ok := t.indexOf(id)
	if !ok {
		return false
	}
	orig := t.segments[idx]
	t.removeByID(id)
	t.history.record(
		func() { t.insertSorted(orig) },
		func() { t.removeByID(orig.ID) },
	)
	return true
}

// Undo reverts the most recent edit; reports false when there is nothing
// to undo.
func (t *Timeline) Undo() bool {
	return t.history.undo()
}

// Redo reapplies the most recently undone edit. Any new edit after an undo
// discards the redo tail.
func (t *Timeline) Redo() bool {
	return t.history.redo()
}

// Segments returns a sorted copy of the timeline content.
func (t *Timeline) Segments() []segment.Segment {
	return t.copySegments()
}

func (t *Timeline) Len() int {
	return len(t.segments)
}

func (t *Timeline) Get(id segment.ID) (segment.Segment, bool) {
	idx, ok := t.indexOf(id)
	if !ok {
		return segment.Segment{}, false
	}
	return t.segments[idx].Clone(), true
}

// ActiveAt returns the segments covering the timestamp, in timeline order.
// Used by the preview renderer during playback.
func (t *Timeline) ActiveAt(ts time.Duration) []segment.Segment {
	var active []segment.Segment
	for _, seg := range t.segments {
		if seg.Start > ts {
			break
		}
		if seg.Contains(ts) {
			active = append(active, seg.Clone())
		}
	}
	return active
}

// clips seg against its would-be neighbors; exclude skips one id (the
// segment being edited)
func (t *Timeline) fitToNeighbors(seg segment.Segment, exclude segment.ID) (segment.Segment, error) {
	for _, other := range t.segments {
		if other.ID == exclude || !seg.Overlaps(other) {
			continue
		}
		if t.policy == PolicyReject {
			return segment.Segment{}, fmt.Errorf(
				"%w: segment %v-%v collides with segment %d", ErrOverlapConflict, seg.Start, seg.End, other.ID)
		}
		// PolicyTrim
		switch {
		case seg.Start < other.Start && seg.End > other.Start:
			seg.End = other.Start
		case seg.Start >= other.Start && seg.Start < other.End:
			seg.Start = other.End
		}
		if seg.End <= seg.Start {
			return segment.Segment{}, fmt.Errorf(
				"%w: segment fully covered by segment %d", ErrOverlapConflict, other.ID)
		}
	}
	return seg, nil
}

func (t *Timeline) copySegments() []segment.Segment {
	out := make([]segment.Segment, len(t.segments))
	for i, seg := range t.segments {
		out[i] = seg.Clone()
	}
	return out
}

func (t *Timeline) indexOf(id segment.ID) (int, bool) {
	for i, seg := range t.segments {
		if seg.ID == id {
			return i, true
		}
	}
	return 0, false
}

// insertSorted keeps segments ordered by start; equal starts fall back to
// ascending id, never text content
func (t *Timeline) insertSorted(seg segment.Segment) {
	pos := sort.Search(len(t.segments), func(i int) bool {
		if t.segments[i].Start != seg.Start {
			return t.segments[i].Start > seg.Start
		}
		return t.segments[i].ID > seg.ID
	})
	t.segments = append(t.segments, segment.Segment{})
	copy(t.segments[pos+1:], t.segments[pos:])
	t.segments[pos] = seg
}

func (t *Timeline) removeByID(id segment.ID) {
	idx, ok := t.indexOf(id)
	if !ok {
		return
	}
	t.segments = append(t.segments[:idx], t.segments[idx+1:]...)
}
