package theme

import (
	"fmt"
	"regexp"
	"time"
)

// subtitle anchor position on screen
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// entry/exit animation kinds; the engine only carries the declaration,
// translating it into effect syntax is the codec's job
type AnimationKind string

const (
	AnimationNone   AnimationKind = "none"
	AnimationFade   AnimationKind = "fade"
	AnimationPop    AnimationKind = "pop"
	AnimationBounce AnimationKind = "bounce"
)

type Font struct {
	Family string `yaml:"family"`
	Size   int    `yaml:"size"`
	Bold   bool   `yaml:"bold"`
	Italic bool   `yaml:"italic"`
}

// colors as #RRGGBB or #RRGGBBAA hex strings
type Colors struct {
	Primary    string `yaml:"primary"`
	Highlight  string `yaml:"highlight"`
	Outline    string `yaml:"outline"`
	Background string `yaml:"background"`
	Shadow     string `yaml:"shadow"`
}

type Outline struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
}

type Shadow struct {
	Enabled bool `yaml:"enabled"`
	OffsetX int  `yaml:"offset_x"`
	OffsetY int  `yaml:"offset_y"`
	Blur    int  `yaml:"blur"`
}

type Layout struct {
	Position        Position  `yaml:"position"`
	Alignment       Alignment `yaml:"alignment"`
	MarginX         int       `yaml:"margin_x"`
	MarginY         int       `yaml:"margin_y"`
	MaxWordsPerLine int       `yaml:"max_words_per_line"`
}

// declarative animation parameters
type Animation struct {
	Entry       AnimationKind `yaml:"entry"`
	Exit        AnimationKind `yaml:"exit"`
	Duration    time.Duration `yaml:"duration"`
	WordStagger time.Duration `yaml:"word_stagger"`
	Karaoke     bool          `yaml:"karaoke"`
}

// Theme is an immutable named bundle of style attributes. Sessions hold
// themes by value; switching themes never mutates segment data.
type Theme struct {
	Name      string    `yaml:"name"`
	Font      Font      `yaml:"font"`
	Colors    Colors    `yaml:"colors"`
	Outline   Outline   `yaml:"outline"`
	Shadow    Shadow    `yaml:"shadow"`
	Layout    Layout    `yaml:"layout"`
	Animation Animation `yaml:"animation"`
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$`)

// Validate checks the theme against the attribute schema shared with
// per-segment overrides.
func (t Theme) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme: name required")
	}
	if t.Font.Family == "" {
		return fmt.Errorf("theme %q: font family required", t.Name)
	}
	if t.Font.Size <= 0 {
		return fmt.Errorf("theme %q: font size must be positive, got %d", t.Name, t.Font.Size)
	}
	for attr, color := range map[string]string{
		"primary":    t.Colors.Primary,
		"highlight":  t.Colors.Highlight,
		"outline":    t.Colors.Outline,
		"background": t.Colors.Background,
		"shadow":     t.Colors.Shadow,
	} {
		if err := validateColor(attr, color); err != nil {
			return fmt.Errorf("theme %q: %w", t.Name, err)
		}
	}
	switch t.Layout.Position {
	case PositionTop, PositionCenter, PositionBottom:
	default:
		return fmt.Errorf("theme %q: unknown position %q", t.Name, t.Layout.Position)
	}
	switch t.Layout.Alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("theme %q: unknown alignment %q", t.Name, t.Layout.Alignment)
	}
	for attr, kind := range map[string]AnimationKind{"entry": t.Animation.Entry, "exit": t.Animation.Exit} {
		switch kind {
		case AnimationNone, AnimationFade, AnimationPop, AnimationBounce:
		default:
			return fmt.Errorf("theme %q: unknown %s animation %q", t.Name, attr, kind)
		}
	}
	if t.Animation.Duration < 0 || t.Animation.WordStagger < 0 {
		return fmt.Errorf("theme %q: negative animation timing", t.Name)
	}
	return nil
}

func validateColor(attr, color string) error {
	if !hexColorRe.MatchString(color) {
		return fmt.Errorf("attribute %s: invalid hex color %q", attr, color)
	}
	return nil
}
