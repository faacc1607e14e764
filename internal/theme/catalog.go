package theme

import (
	"fmt"
	"sort"
	"time"
)

// built-in preset catalog, loaded once and read-only afterwards
var builtins = map[string]Theme{
	"Default": {
		Name:      "Default",
		Font:      Font{Family: "Arial", Size: 72, Bold: true},
		Colors:    Colors{Primary: "#FFFFFF", Highlight: "#00FF88", Outline: "#000000", Background: "#000000CC", Shadow: "#00000080"},
		Outline:   Outline{Enabled: true, Width: 3},
		Layout:    Layout{Position: PositionBottom, Alignment: AlignCenter, MarginX: 50, MarginY: 100, MaxWordsPerLine: 5},
		Animation: Animation{Entry: AnimationPop, Exit: AnimationFade, Duration: 200 * time.Millisecond, WordStagger: 50 * time.Millisecond},
	},
	"Shadow 3D": {
		Name:      "Shadow 3D",
		Font:      Font{Family: "Impact", Size: 80, Bold: true},
		Colors:    Colors{Primary: "#FFFFFF", Highlight: "#FFD700", Outline: "#1A1A1A", Background: "#00000000", Shadow: "#000000B0"},
		Outline:   Outline{Enabled: true, Width: 4},
		Shadow:    Shadow{Enabled: true, OffsetX: 4, OffsetY: 4, Blur: 2},
		Layout:    Layout{Position: PositionBottom, Alignment: AlignCenter, MarginX: 50, MarginY: 120, MaxWordsPerLine: 4},
		Animation: Animation{Entry: AnimationFade, Exit: AnimationFade, Duration: 200 * time.Millisecond, WordStagger: 50 * time.Millisecond},
	},
	"Karaoke": {
		Name:      "Karaoke",
		Font:      Font{Family: "Arial", Size: 72, Bold: true},
		Colors:    Colors{Primary: "#FFFFFF", Highlight: "#00FF88", Outline: "#000000", Background: "#000000CC", Shadow: "#00000080"},
		Outline:   Outline{Enabled: true, Width: 3},
		Layout:    Layout{Position: PositionBottom, Alignment: AlignCenter, MarginX: 50, MarginY: 100, MaxWordsPerLine: 5},
		Animation: Animation{Entry: AnimationFade, Exit: AnimationFade, Duration: 150 * time.Millisecond, WordStagger: 50 * time.Millisecond, Karaoke: true},
	},
	"Reel Bold": {
		Name:      "Reel Bold",
		Font:      Font{Family: "Montserrat", Size: 88, Bold: true},
		Colors:    Colors{Primary: "#FFFFFF", Highlight: "#FF3B6B", Outline: "#000000", Background: "#000000E0", Shadow: "#00000080"},
		Outline:   Outline{Enabled: true, Width: 5},
		Layout:    Layout{Position: PositionCenter, Alignment: AlignCenter, MarginX: 60, MarginY: 0, MaxWordsPerLine: 3},
		Animation: Animation{Entry: AnimationBounce, Exit: AnimationFade, Duration: 300 * time.Millisecond, WordStagger: 60 * time.Millisecond, Karaoke: true},
	},
}

// Default returns the fallback theme.
func Default() Theme {
	return builtins["Default"]
}

// Builtin looks up a preset by name. Returned themes are copies; the
// catalog itself is never mutated at runtime.
func Builtin(name string) (Theme, error) {
	t, ok := builtins[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme: %q", name)
	}
	return t, nil
}

// Catalog lists the built-in presets in stable name order.
func Catalog() []Theme {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	themes := make([]Theme, 0, len(names))
	for _, name := range names {
		themes = append(themes, builtins[name])
	}
	return themes
}
