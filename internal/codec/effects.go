package codec

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
)

// hexToASSColor converts a #RRGGBB or #RRGGBBAA hex color to the ASS
// &HAABBGGRR form. ASS alpha is inverted: 00 is opaque, FF transparent.
func hexToASSColor(hex string) (string, error) {
	hex = strings.TrimPrefix(hex, "#")

	var r, g, b, a int
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return "", fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		a = 0
	case 8:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return "", fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		a = 255 - a
	default:
		return "", fmt.Errorf("invalid hex color %q", hex)
	}

	return fmt.Sprintf("&H%02X%02X%02X%02X", a, b, g, r), nil
}

// assColorToHex is the inverse of hexToASSColor. Fully opaque colors
// come back as plain #RRGGBB.
func assColorToHex(ass string) (string, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(strings.ToUpper(ass), "&H"), "&")
	for len(s) < 8 {
		s = "0" + s
	}

	var a, b, g, r int
	if _, err := fmt.Sscanf(s, "%02X%02X%02X%02X", &a, &b, &g, &r); err != nil {
		return "", fmt.Errorf("invalid ASS color %q: %w", ass, err)
	}
	a = 255 - a

	if a == 255 {
		return fmt.Sprintf("#%02X%02X%02X", r, g, b), nil
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, a), nil
}

// backgroundVisible reports whether a background hex color has any
// opacity at all. A 6-digit color is fully opaque.
func backgroundVisible(hex string) bool {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 8 {
		return len(hex) == 6
	}
	var a int
	if _, err := fmt.Sscanf(hex[6:], "%02x", &a); err != nil {
		return false
	}
	return a > 0
}

// alignmentCode maps position and alignment onto the ASS numpad scheme:
//
//	7 8 9  top
//	4 5 6  middle
//	1 2 3  bottom
func alignmentCode(pos theme.Position, align theme.Alignment) int {
	base := 1
	switch pos {
	case theme.PositionTop:
		base = 7
	case theme.PositionCenter:
		base = 4
	}
	offset := 1
	switch align {
	case theme.AlignLeft:
		offset = 0
	case theme.AlignRight:
		offset = 2
	}
	return base + offset
}

func positionFromAlignment(code int) (theme.Position, theme.Alignment) {
	pos := theme.PositionBottom
	switch {
	case code >= 7:
		pos = theme.PositionTop
	case code >= 4:
		pos = theme.PositionCenter
	}
	align := theme.AlignCenter
	switch code % 3 {
	case 1:
		align = theme.AlignLeft
	case 0:
		align = theme.AlignRight
	}
	return pos, align
}

func millis(d time.Duration) int {
	return int(d.Milliseconds())
}

func fadeTag(entry, exit time.Duration) string {
	return fmt.Sprintf("\\fad(%d,%d)", millis(entry), millis(exit))
}

// popInTag scales from half size to full over the given duration.
func popInTag(duration time.Duration) string {
	return fmt.Sprintf("\\fscx50\\fscy50\\t(0,%d,\\fscx100\\fscy100)", millis(duration))
}

// popOutTag shrinks and fades out starting at the given offset.
func popOutTag(start, duration time.Duration) string {
	return fmt.Sprintf("\\t(%d,%d,\\fscx50\\fscy50\\alpha&HFF&)", millis(start), millis(start+duration))
}

// bounceTag approximates a bounce with three chained scale transforms.
func bounceTag(duration time.Duration) string {
	t1 := duration / 3
	t2 := duration * 2 / 3
	return fmt.Sprintf(
		"\\fscx80\\fscy80\\t(0,%d,\\fscx110\\fscy110)\\t(%d,%d,\\fscx95\\fscy95)\\t(%d,%d,\\fscx100\\fscy100)",
		millis(t1), millis(t1), millis(t2), millis(t2), millis(duration),
	)
}

// karaokeText builds per-word color transition tags: each word starts in
// the primary color, snaps to the highlight color at its start offset and
// back to primary at its end offset, all relative to the event start. A
// hard break goes in every maxPerLine words when the limit is set.
func karaokeText(words []segment.Word, eventStart time.Duration, primary, highlight string, maxPerLine int) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			if maxPerLine > 0 && i%maxPerLine == 0 {
				sb.WriteString("\\N")
			} else {
				sb.WriteString(" ")
			}
		}
		startRel := millis(w.Start - eventStart)
		endRel := millis(w.End - eventStart)
		fmt.Fprintf(&sb,
			"{\\c%s\\t(%d,%d,\\c%s)\\t(%d,%d,\\c%s)}%s",
			primary, startRel, startRel, highlight, endRel, endRel, primary, w.Text,
		)
	}
	return sb.String()
}

// wrapWords reflows text into lines of at most maxPerLine words. Zero
// disables wrapping.
func wrapWords(text string, maxPerLine int) string {
	if maxPerLine <= 0 {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) <= maxPerLine {
		return text
	}
	lines := make([]string, 0, (len(fields)+maxPerLine-1)/maxPerLine)
	for start := 0; start < len(fields); start += maxPerLine {
		end := start + maxPerLine
		if end > len(fields) {
			end = len(fields)
		}
		lines = append(lines, strings.Join(fields[start:end], " "))
	}
	return strings.Join(lines, "\n")
}

// estimateWordTimings distributes the event span over its words in
// proportion to character count. Used when no word-level timestamps are
// available so karaoke highlighting still covers the full span.
func estimateWordTimings(text string, start, end time.Duration) []segment.Word {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	total := 0
	for _, f := range fields {
		total += len(f)
	}

	span := end - start
	words := make([]segment.Word, 0, len(fields))
	current := start
	for i, f := range fields {
		var d time.Duration
		if total > 0 {
			d = span * time.Duration(len(f)) / time.Duration(total)
		} else {
			d = span / time.Duration(len(fields))
		}
		wEnd := current + d
		if i == len(fields)-1 {
			wEnd = end
		}
		words = append(words, segment.Word{Text: f, Start: current, End: wEnd})
		current = wEnd
	}
	return words
}

// escapeASSText maps newlines to hard line breaks.
func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}

func unescapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\\N", "\n")
	return strings.ReplaceAll(text, "\\n", "\n")
}

var overrideTagRe = regexp.MustCompile(`\{[^}]*\}`)

// stripOverrideTags removes inline {...} override blocks, leaving the
// plain text of a Dialogue line.
func stripOverrideTags(text string) string {
	return overrideTagRe.ReplaceAllString(text, "")
}
