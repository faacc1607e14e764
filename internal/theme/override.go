package theme

import "fmt"

// Override carries sparse per-segment attribute replacements layered on
// top of the active theme. Nil fields leave the theme value untouched, so
// overriding one attribute never resets another. The fields mirror the
// theme schema, which keeps overrides serializable by the codec.
type Override struct {
	FontFamily      *string
	FontSize        *int
	Bold            *bool
	Italic          *bool
	PrimaryColor    *string
	HighlightColor  *string
	OutlineColor    *string
	BackgroundColor *string
	OutlineWidth    *int
	Position        *Position
	Alignment       *Alignment
}

// Validate checks override values against the same schema used for theme
// presets so an override can never introduce an attribute the codec does
// not know how to serialize.
func (o Override) Validate() error {
	if o.FontSize != nil && *o.FontSize <= 0 {
		return fmt.Errorf("override: font size must be positive, got %d", *o.FontSize)
	}
	if o.OutlineWidth != nil && *o.OutlineWidth < 0 {
		return fmt.Errorf("override: negative outline width")
	}
	for attr, color := range map[string]*string{
		"primary":    o.PrimaryColor,
		"highlight":  o.HighlightColor,
		"outline":    o.OutlineColor,
		"background": o.BackgroundColor,
	} {
		if color == nil {
			continue
		}
		if err := validateColor(attr, *color); err != nil {
			return fmt.Errorf("override: %w", err)
		}
	}
	if o.Position != nil {
		switch *o.Position {
		case PositionTop, PositionCenter, PositionBottom:
		default:
			return fmt.Errorf("override: unknown position %q", *o.Position)
		}
	}
	if o.Alignment != nil {
		switch *o.Alignment {
		case AlignLeft, AlignCenter, AlignRight:
		default:
			return fmt.Errorf("override: unknown alignment %q", *o.Alignment)
		}
	}
	return nil
}

// apply layers the override onto a resolved theme, attribute by attribute
func (o Override) apply(t Theme) Theme {
	if o.FontFamily != nil {
		t.Font.Family = *o.FontFamily
	}
	if o.FontSize != nil {
		t.Font.Size = *o.FontSize
	}
	if o.Bold != nil {
		t.Font.Bold = *o.Bold
	}
	if o.Italic != nil {
		t.Font.Italic = *o.Italic
	}
	if o.PrimaryColor != nil {
		t.Colors.Primary = *o.PrimaryColor
	}
	if o.HighlightColor != nil {
		t.Colors.Highlight = *o.HighlightColor
	}
	if o.OutlineColor != nil {
		t.Colors.Outline = *o.OutlineColor
	}
	if o.BackgroundColor != nil {
		t.Colors.Background = *o.BackgroundColor
	}
	if o.OutlineWidth != nil {
		t.Outline.Width = *o.OutlineWidth
		t.Outline.Enabled = *o.OutlineWidth > 0
	}
	if o.Position != nil {
		t.Layout.Position = *o.Position
	}
	if o.Alignment != nil {
		t.Layout.Alignment = *o.Alignment
	}
	return t
}
