package theme

import (
	"fmt"
	"time"

	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
)

// StyledEvent is the resolved, ready-to-serialize unit combining a segment
// with its fully resolved visual style. It is a pure projection: never
// stored, recomputed whenever the theme, an override, or a segment changes.
type StyledEvent struct {
	SegmentID segment.ID
	Start     time.Duration
	End       time.Duration
	Text      string
	Words     []segment.Word
	Style     Theme
	Animation Animation
}

// Resolver layers built-in defaults, the active theme, and per-segment
// overrides into styled events.
type Resolver struct {
	active    Theme
	overrides map[segment.ID]Override
}

func NewResolver(active Theme) *Resolver {
	return &Resolver{
		active:    active,
		overrides: make(map[segment.ID]Override),
	}
}

func (r *Resolver) ActiveTheme() Theme {
	return r.active
}

// SetTheme switches the active theme; segments are untouched and simply
// re-resolve against the new theme.
func (r *Resolver) SetTheme(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.active = t
	return nil
}

// SetOverride attaches a partial style override to one segment.
func (r *Resolver) SetOverride(id segment.ID, o Override) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("segment %d: %w", id, err)
	}
	r.overrides[id] = o
	return nil
}

func (r *Resolver) ClearOverride(id segment.ID) {
	delete(r.overrides, id)
}

// Resolve projects segments into styled events. Each attribute resolves
// independently: defaults, then the active theme's values, then the
// segment's override.
func (r *Resolver) Resolve(segments []segment.Segment) []StyledEvent {
	events := make([]StyledEvent, 0, len(segments))
	for _, seg := range segments {
		style := r.active
		if o, ok := r.overrides[seg.ID]; ok {
			style = o.apply(style)
		}
		events = append(events, StyledEvent{
			SegmentID: seg.ID,
			Start:     seg.Start,
			End:       seg.End,
			Text:      seg.Text,
			Words:     seg.Words,
			Style:     style,
			Animation: style.Animation,
		})
	}
	return events
}
