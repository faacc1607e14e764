package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tuguberk/ai-subtitle-creator/internal/codec"
	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
	"github.com/Tuguberk/ai-subtitle-creator/internal/timeline"
)

// loadRawSegments reads timed text from a subtitle file or a JSON array
// of raw transcription segments.
func loadRawSegments(path string) ([]segment.Raw, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt":
		segments, err := codec.DecodeSRTFile(path)
		if err != nil {
			return nil, err
		}
		return rawFromSegments(segments), nil
	case ".ass", ".ssa":
		events, err := codec.DecodeASSFile(path)
		if err != nil {
			return nil, err
		}
		raws := make([]segment.Raw, 0, len(events))
		for _, ev := range events {
			raw := segment.Raw{
				Start: ev.Start.Seconds(),
				End:   ev.End.Seconds(),
				Text:  ev.Text,
			}
			for _, w := range ev.Words {
				raw.Words = append(raw.Words, segment.RawWord{
					Text:  w.Text,
					Start: w.Start.Seconds(),
					End:   w.End.Seconds(),
				})
			}
			raws = append(raws, raw)
		}
		return raws, nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read segments file: %w", err)
		}
		var raws []segment.Raw
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("parse segments file %s: %w", path, err)
		}
		return raws, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q: use srt, ass, or json", ext)
	}
}

func rawFromSegments(segments []segment.Segment) []segment.Raw {
	raws := make([]segment.Raw, 0, len(segments))
	for _, seg := range segments {
		raw := segment.Raw{
			Start:      seg.Start.Seconds(),
			End:        seg.End.Seconds(),
			Text:       seg.Text,
			Confidence: seg.Confidence,
		}
		for _, w := range seg.Words {
			raw.Words = append(raw.Words, segment.RawWord{
				Text:  w.Text,
				Start: w.Start.Seconds(),
				End:   w.End.Seconds(),
			})
		}
		raws = append(raws, raw)
	}
	return raws
}

func overlapPolicy(name string) (timeline.OverlapPolicy, error) {
	switch strings.ToLower(name) {
	case "reject":
		return timeline.PolicyReject, nil
	case "trim":
		return timeline.PolicyTrim, nil
	case "allow":
		return timeline.PolicyAllow, nil
	default:
		return timeline.PolicyReject, fmt.Errorf("unknown overlap policy %q: use reject, trim, or allow", name)
	}
}

// ingestFile loads a file and runs it through a fresh timeline so the
// result is validated, sorted, and id-stamped.
func ingestFile(path, policyName string) ([]segment.Segment, error) {
	raws, err := loadRawSegments(path)
	if err != nil {
		return nil, err
	}

	policy, err := overlapPolicy(policyName)
	if err != nil {
		return nil, err
	}

	tl := timeline.New(policy)
	segments, err := tl.Ingest(raws)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return segments, nil
}
