package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
)

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func mustIngest(t *testing.T, tl *Timeline, batch []segment.Raw) []segment.Segment {
	t.Helper()
	segs, err := tl.Ingest(batch)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	return segs
}

func TestIngestDropsEmptyAndSorts(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{
		{Start: 3.0, End: 4.0, Text: "third"},
		{Start: 0.0, End: 1.0, Text: "first"},
		{Start: 1.5, End: 2.0, Text: "   "},
		{Start: 2.0, End: 3.0, Text: "second"},
	})

	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[0].Text != "first" || segs[1].Text != "second" || segs[2].Text != "third" {
		t.Errorf("segments not sorted by start: %v %v %v", segs[0].Text, segs[1].Text, segs[2].Text)
	}
}

func TestIngestReportsOffendingIndices(t *testing.T) {
	tl := New(PolicyReject)
	_, err := tl.Ingest([]segment.Raw{
		{Start: 0.0, End: 1.0, Text: "ok"},
		{Start: 2.0, End: 1.5, Text: "backwards"},
		{Start: -1.0, End: 1.0, Text: "negative"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Indices) != 2 || verr.Indices[0] != 1 || verr.Indices[1] != 2 {
		t.Errorf("offending indices = %v, want [1 2]", verr.Indices)
	}
	if tl.Len() != 0 {
		t.Error("failed ingest must not leave partial content")
	}
}

func TestIngestTrimPolicy(t *testing.T) {
	tl := New(PolicyTrim)
	segs := mustIngest(t, tl, []segment.Raw{
		{Start: 0.0, End: 2.0, Text: "a"},
		{Start: 1.5, End: 3.0, Text: "b"},
	})
	if segs[0].End != seconds(1.5) {
		t.Errorf("earlier segment not trimmed: end = %v, want 1.5s", segs[0].End)
	}
}

func TestInsertOverlapRejected(t *testing.T) {
	tl := New(PolicyReject)
	mustIngest(t, tl, []segment.Raw{{Start: 0.0, End: 2.0, Text: "existing"}})
	before := tl.Segments()

	_, err := tl.Insert(segment.Segment{Start: seconds(1.0), End: seconds(3.0), Text: "overlapping"})
	if !errors.Is(err, ErrOverlapConflict) {
		t.Fatalf("expected ErrOverlapConflict, got %v", err)
	}

	after := tl.Segments()
	if len(after) != len(before) || after[0].End != before[0].End {
		t.Error("rejected insert mutated the timeline")
	}
}

func TestInsertKeepsOrderAndUniqueIDs(t *testing.T) {
	tl := New(PolicyReject)
	seen := map[segment.ID]bool{}
	spans := [][2]float64{{4, 5}, {0, 1}, {2, 3}, {6, 7}, {1, 2}}
	for _, span := range spans {
		seg, err := tl.Insert(segment.Segment{Start: seconds(span[0]), End: seconds(span[1]), Text: "x"})
		if err != nil {
			t.Fatalf("Insert(%v) failed: %v", span, err)
		}
		if seen[seg.ID] {
			t.Fatalf("id %d reused", seg.ID)
		}
		seen[seg.ID] = true
	}

	segs := tl.Segments()
	for i := 1; i < len(segs); i++ {
		if segs[i].Start < segs[i-1].Start {
			t.Fatalf("timeline not sorted at %d", i)
		}
		if segs[i-1].Overlaps(segs[i]) {
			t.Fatalf("segments %d and %d overlap", i-1, i)
		}
	}
}

func TestSplitAndMergeRoundTrip(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{{Start: 1.0, End: 5.0, Text: "whole"}})
	orig := segs[0]

	first, second, err := tl.Split(orig.ID, seconds(3.0), "", "")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if first.End != seconds(3.0) || second.Start != seconds(3.0) {
		t.Errorf("split bounds wrong: %v / %v", first, second)
	}
	if first.Text != "whole" || second.Text != "whole" {
		t.Error("halves should keep original text when no partition given")
	}
	if first.ID == orig.ID || second.ID == orig.ID || first.ID == second.ID {
		t.Error("split must produce fresh ids")
	}

	merged, err := tl.Merge([]segment.ID{first.ID, second.ID})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Start != orig.Start || merged.End != orig.End {
		t.Errorf("merge of split halves should restore bounds %v-%v, got %v-%v",
			orig.Start, orig.End, merged.Start, merged.End)
	}

	// a whitespace-only half text falls back like an empty one; blank
	// segments must never enter the timeline
	blankFirst, namedSecond, err := tl.Split(merged.ID, seconds(2.0), "   ", "tail")
	if err != nil {
		t.Fatalf("Split with blank text failed: %v", err)
	}
	if blankFirst.Text != merged.Text {
		t.Errorf("blank half text should keep the original, got %q", blankFirst.Text)
	}
	if namedSecond.Text != "tail" {
		t.Errorf("second half text = %q, want 'tail'", namedSecond.Text)
	}
	for _, seg := range tl.Segments() {
		if err := seg.Validate(); err != nil {
			t.Errorf("split left an invalid segment behind: %v", err)
		}
	}
}

func TestSplitOutOfRange(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{{Start: 1.0, End: 2.0, Text: "x"}})

	for _, at := range []time.Duration{seconds(1.0), seconds(2.0), seconds(5.0)} {
		_, _, err := tl.Split(segs[0].ID, at, "", "")
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Split at %v: expected ErrOutOfRange, got %v", at, err)
		}
	}
	if tl.Len() != 1 {
		t.Error("failed split mutated the timeline")
	}
}

func TestMergeExample(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{
		{Start: 0.0, End: 1.5, Text: "Hello"},
		{Start: 1.5, End: 3.0, Text: "world"},
	})

	merged, err := tl.Merge([]segment.ID{segs[0].ID, segs[1].ID})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Start != 0 || merged.End != seconds(3.0) {
		t.Errorf("merged span = %v-%v, want 0s-3s", merged.Start, merged.End)
	}
	if merged.Text != "Hello world" {
		t.Errorf("merged text = %q, want 'Hello world'", merged.Text)
	}
	if tl.Len() != 1 {
		t.Errorf("timeline has %d segments after merge, want 1", tl.Len())
	}
}

func TestMergeNonAdjacent(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{
		{Start: 0.0, End: 1.0, Text: "a"},
		{Start: 1.0, End: 2.0, Text: "b"},
		{Start: 2.0, End: 3.0, Text: "c"},
	})

	_, err := tl.Merge([]segment.ID{segs[0].ID, segs[2].ID})
	if !errors.Is(err, ErrNonAdjacent) {
		t.Fatalf("expected ErrNonAdjacent, got %v", err)
	}
	if tl.Len() != 3 {
		t.Error("failed merge mutated the timeline")
	}
}

func TestShiftAndRetimeConflicts(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{
		{Start: 0.0, End: 1.0, Text: "a"},
		{Start: 2.0, End: 3.0, Text: "b"},
	})

	if _, err := tl.Shift(segs[1].ID, -seconds(1.5)); !errors.Is(err, ErrOverlapConflict) {
		t.Errorf("shift into neighbor: expected ErrOverlapConflict, got %v", err)
	}
	if _, err := tl.Retime(segs[0].ID, 0, seconds(2.5)); !errors.Is(err, ErrOverlapConflict) {
		t.Errorf("retime over neighbor: expected ErrOverlapConflict, got %v", err)
	}

	shifted, err := tl.Shift(segs[1].ID, seconds(1.0))
	if err != nil {
		t.Fatalf("valid shift failed: %v", err)
	}
	if shifted.Start != seconds(3.0) || shifted.End != seconds(4.0) {
		t.Errorf("shifted to %v-%v, want 3s-4s", shifted.Start, shifted.End)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{{Start: 0.0, End: 1.0, Text: "x"}})

	if !tl.Remove(segs[0].ID) {
		t.Error("first remove should report true")
	}
	if tl.Remove(segs[0].ID) {
		t.Error("second remove should be a no-op")
	}
	if tl.Remove(9999) {
		t.Error("removing an unknown id should be a no-op")
	}
}

func TestUndoRedo(t *testing.T) {
	tl := New(PolicyReject)
	segs := mustIngest(t, tl, []segment.Raw{{Start: 0.0, End: 1.0, Text: "x"}})

	inserted, err := tl.Insert(segment.Segment{Start: seconds(2.0), End: seconds(3.0), Text: "y"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if !tl.Undo() {
		t.Fatal("Undo reported nothing to undo")
	}
	if _, ok := tl.Get(inserted.ID); ok {
		t.Error("undo did not revert the insert")
	}

	if !tl.Redo() {
		t.Fatal("Redo reported nothing to redo")
	}
	if _, ok := tl.Get(inserted.ID); !ok {
		t.Error("redo did not reapply the insert")
	}

	// redo tail discarded by a new edit
	tl.Undo()
	if !tl.Remove(segs[0].ID) {
		t.Fatal("remove failed")
	}
	if tl.Redo() {
		t.Error("redo after a new edit should report nothing to redo")
	}

	// undo of split restores the original segment
	tl2 := New(PolicyReject)
	segs2 := mustIngest(t, tl2, []segment.Raw{{Start: 0.0, End: 4.0, Text: "whole"}})
	tl2.Split(segs2[0].ID, seconds(2.0), "", "")
	tl2.Undo()
	got, ok := tl2.Get(segs2[0].ID)
	if !ok || got.End != seconds(4.0) {
		t.Errorf("undo of split did not restore original, got %v ok=%v", got, ok)
	}
}

func TestHistoryClearedOnIngest(t *testing.T) {
	tl := New(PolicyReject)
	mustIngest(t, tl, []segment.Raw{{Start: 0.0, End: 1.0, Text: "x"}})
	tl.Insert(segment.Segment{Start: seconds(2.0), End: seconds(3.0), Text: "y"})
	mustIngest(t, tl, []segment.Raw{{Start: 0.0, End: 1.0, Text: "fresh"}})

	if tl.Undo() {
		t.Error("ingest should clear history")
	}
}

func TestActiveAt(t *testing.T) {
	tl := New(PolicyAllow)
	mustIngest(t, tl, []segment.Raw{
		{Start: 0.0, End: 2.0, Text: "a"},
		{Start: 1.0, End: 3.0, Text: "b"},
		{Start: 5.0, End: 6.0, Text: "c"},
	})

	active := tl.ActiveAt(seconds(1.5))
	if len(active) != 2 {
		t.Fatalf("expected 2 active segments, got %d", len(active))
	}
	if active[0].Text != "a" || active[1].Text != "b" {
		t.Errorf("active segments out of order: %v %v", active[0].Text, active[1].Text)
	}
	if got := tl.ActiveAt(seconds(4.0)); len(got) != 0 {
		t.Errorf("expected no active segments at 4s, got %d", len(got))
	}
}

func TestEqualStartsOrderByID(t *testing.T) {
	tl := New(PolicyAllow)
	first, _ := tl.Insert(segment.Segment{Start: seconds(1.0), End: seconds(2.0), Text: "zzz"})
	second, _ := tl.Insert(segment.Segment{Start: seconds(1.0), End: seconds(3.0), Text: "aaa"})

	segs := tl.Segments()
	if segs[0].ID != first.ID || segs[1].ID != second.ID {
		t.Errorf("tie-break must be ascending id, got %d then %d", segs[0].ID, segs[1].ID)
	}
}
