package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
)

// ASSOptions controls script-level encoding parameters. Zero values fall
// back to a vertical 1080x1920 canvas.
type ASSOptions struct {
	Title    string
	PlayResX int
	PlayResY int
}

const (
	defaultPlayResX = 1080
	defaultPlayResY = 1920
)

const assStyleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, " +
	"OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, " +
	"Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"

const assEventFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

// EncodeASS serializes styled events to an Advanced SubStation Alpha
// script. Identical resolved styles collapse into one Style line, named
// Style1, Style2 and so on in first-appearance order, so N segments
// sharing a theme produce a single style definition. Each event becomes
// exactly one Dialogue line; animation and karaoke effects are emitted
// as inline override tags.
func EncodeASS(events []theme.StyledEvent, opts ASSOptions) (string, error) {
	var prev time.Duration
	for i, ev := range events {
		if ev.End <= ev.Start {
			return "", fmt.Errorf("%w: event %d ends at %v before it starts at %v",
				ErrEncodeInvariant, i, ev.End, ev.Start)
		}
		if ev.Start < prev {
			return "", fmt.Errorf("%w: events not sorted at index %d", ErrEncodeInvariant, i)
		}
		prev = ev.Start
	}

	if opts.PlayResX == 0 {
		opts.PlayResX = defaultPlayResX
	}
	if opts.PlayResY == 0 {
		opts.PlayResY = defaultPlayResY
	}
	if opts.Title == "" {
		opts.Title = "Styled Subtitles"
	}

	// deduplicate styles by their rendered definition
	styleNames := make(map[string]string)
	var styleLines []string
	styleFor := func(t theme.Theme) (string, error) {
		def, err := styleDefinition(t)
		if err != nil {
			return "", err
		}
		if name, ok := styleNames[def]; ok {
			return name, nil
		}
		name := fmt.Sprintf("Style%d", len(styleLines)+1)
		styleNames[def] = name
		styleLines = append(styleLines, "Style: "+name+def)
		return name, nil
	}

	var dialogues []string
	for _, ev := range events {
		name, err := styleFor(ev.Style)
		if err != nil {
			return "", err
		}
		text, err := assEventText(ev)
		if err != nil {
			return "", err
		}
		dialogues = append(dialogues, fmt.Sprintf(
			"Dialogue: 0,%s,%s,%s,,0,0,0,,%s",
			formatASSTime(ev.Start), formatASSTime(ev.End), name, text,
		))
	}

	var sb strings.Builder
	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: " + opts.Title + "\n")
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("WrapStyle: 0\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n")
	sb.WriteString("YCbCr Matrix: TV.709\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", opts.PlayResX)
	fmt.Fprintf(&sb, "PlayResY: %d\n", opts.PlayResY)
	sb.WriteString("\n[V4+ Styles]\n")
	sb.WriteString(assStyleFormat + "\n")
	for _, line := range styleLines {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n[Events]\n")
	sb.WriteString(assEventFormat + "\n")
	for _, line := range dialogues {
		sb.WriteString(line + "\n")
	}
	return sb.String(), nil
}

// WriteASS encodes events and writes the script to path.
func WriteASS(events []theme.StyledEvent, path string, opts ASSOptions) error {
	content, err := EncodeASS(events, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// styleDefinition renders the Style line suffix after the name, which
// doubles as the deduplication key.
func styleDefinition(t theme.Theme) (string, error) {
	primary, err := hexToASSColor(t.Colors.Primary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
	}
	secondary, err := hexToASSColor(t.Colors.Highlight)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
	}
	outline, err := hexToASSColor(t.Colors.Outline)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
	}
	back, err := hexToASSColor(t.Colors.Background)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
	}

	bold := 0
	if t.Font.Bold {
		bold = -1
	}
	italic := 0
	if t.Font.Italic {
		italic = -1
	}

	outlineWidth := 0
	if t.Outline.Enabled {
		outlineWidth = t.Outline.Width
	}
	shadowDepth := 0
	if t.Shadow.Enabled {
		shadowDepth = t.Shadow.OffsetX
	}

	// opaque box when the background color has any opacity
	borderStyle := 1
	if backgroundVisible(t.Colors.Background) {
		borderStyle = 3
	}

	return fmt.Sprintf(",%s,%d,%s,%s,%s,%s,%d,%d,0,0,100,100,0,0,%d,%d,%d,%d,%d,%d,%d,1",
		t.Font.Family, t.Font.Size, primary, secondary, outline, back,
		bold, italic, borderStyle, outlineWidth, shadowDepth,
		alignmentCode(t.Layout.Position, t.Layout.Alignment),
		t.Layout.MarginX, t.Layout.MarginX, t.Layout.MarginY,
	), nil
}

func assEventText(ev theme.StyledEvent) (string, error) {
	var tags strings.Builder
	// renderers honor a single \fad per line, so entry and exit fades
	// collapse into one tag; bounce exits render as a fade out
	fadeIn, fadeOut := time.Duration(0), time.Duration(0)
	if ev.Animation.Entry == theme.AnimationFade {
		fadeIn = ev.Animation.Duration
	}
	if ev.Animation.Exit == theme.AnimationFade || ev.Animation.Exit == theme.AnimationBounce {
		fadeOut = ev.Animation.Duration
	}
	if fadeIn > 0 || fadeOut > 0 {
		tags.WriteString(fadeTag(fadeIn, fadeOut))
	}
	switch ev.Animation.Entry {
	case theme.AnimationPop:
		tags.WriteString(popInTag(ev.Animation.Duration))
	case theme.AnimationBounce:
		tags.WriteString(bounceTag(ev.Animation.Duration))
	}
	if ev.Animation.Exit == theme.AnimationPop {
		start := ev.End - ev.Start - ev.Animation.Duration
		if start < 0 {
			start = 0
		}
		tags.WriteString(popOutTag(start, ev.Animation.Duration))
	}
	preamble := ""
	if tags.Len() > 0 {
		preamble = "{" + tags.String() + "}"
	}

	if ev.Style.Animation.Karaoke {
		words := ev.Words
		if len(words) == 0 {
			words = estimateWordTimings(ev.Text, ev.Start, ev.End)
		}
		primary, err := hexToASSColor(ev.Style.Colors.Primary)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
		}
		highlight, err := hexToASSColor(ev.Style.Colors.Highlight)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
		}
		return preamble + karaokeText(words, ev.Start, primary, highlight, ev.Style.Layout.MaxWordsPerLine), nil
	}
	return preamble + escapeASSText(wrapWords(ev.Text, ev.Style.Layout.MaxWordsPerLine)), nil
}

var assTimestampRe = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)

// DecodeASS parses an ASS script back into styled events. Styles are
// resolved from the [V4+ Styles] section; inline fade, pop, bounce and
// karaoke color-transition tags are folded back into the declarative
// animation model. Attributes the script does not carry keep default
// theme values.
func DecodeASS(r io.Reader) ([]theme.StyledEvent, error) {
	scanner := bufio.NewScanner(r)

	styles := make(map[string]theme.Theme)
	var events []theme.StyledEvent
	var section string
	var styleCols, eventCols []string
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.ToLower(strings.Trim(trimmed, "[]"))
			continue
		}

		switch section {
		case "v4+ styles", "v4 styles":
			if cols, ok := formatColumns(trimmed); ok {
				styleCols = cols
				continue
			}
			if value, ok := strings.CutPrefix(trimmed, "Style:"); ok {
				if styleCols == nil {
					return nil, parseErrorf(lineNum, "Style line before Format line")
				}
				name, t, err := parseStyleLine(strings.TrimSpace(value), styleCols)
				if err != nil {
					return nil, parseErrorf(lineNum, "%v", err)
				}
				styles[name] = t
			}
		case "events":
			if cols, ok := formatColumns(trimmed); ok {
				eventCols = cols
				continue
			}
			if value, ok := strings.CutPrefix(trimmed, "Dialogue:"); ok {
				if eventCols == nil {
					return nil, parseErrorf(lineNum, "Dialogue line before Format line")
				}
				ev, err := parseDialogueLine(strings.TrimSpace(value), eventCols, styles)
				if err != nil {
					return nil, parseErrorf(lineNum, "%v", err)
				}
				events = append(events, ev)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitle text: %w", err)
	}
	return events, nil
}

// DecodeASSFile opens and decodes an ASS script.
func DecodeASSFile(path string) ([]theme.StyledEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return DecodeASS(file)
}

func formatColumns(line string) ([]string, bool) {
	value, ok := strings.CutPrefix(line, "Format:")
	if !ok {
		return nil, false
	}
	cols := strings.Split(value, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols, true
}

// splitFields splits a Style or Dialogue payload into exactly n fields;
// the last field keeps any embedded commas.
func splitFields(content string, n int) []string {
	parts := make([]string, 0, n)
	remaining := content
	for i := 0; i < n-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			break
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}
	return append(parts, remaining)
}

func parseStyleLine(content string, cols []string) (string, theme.Theme, error) {
	fields := splitFields(content, len(cols))
	if len(fields) < len(cols) {
		return "", theme.Theme{}, fmt.Errorf("expected %d style fields, got %d", len(cols), len(fields))
	}

	get := func(col string) string {
		for i, c := range cols {
			if strings.EqualFold(c, col) {
				return strings.TrimSpace(fields[i])
			}
		}
		return ""
	}

	t := theme.Default()
	name := get("Name")
	t.Name = name

	if v := get("Fontname"); v != "" {
		t.Font.Family = v
	}
	if v := get("Fontsize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return "", theme.Theme{}, fmt.Errorf("invalid font size %q", v)
		}
		t.Font.Size = size
	}
	for col, dst := range map[string]*string{
		"PrimaryColour":   &t.Colors.Primary,
		"SecondaryColour": &t.Colors.Highlight,
		"OutlineColour":   &t.Colors.Outline,
		"BackColour":      &t.Colors.Background,
	} {
		if v := get(col); v != "" {
			hex, err := assColorToHex(v)
			if err != nil {
				return "", theme.Theme{}, err
			}
			*dst = hex
		}
	}
	t.Font.Bold = get("Bold") == "-1"
	t.Font.Italic = get("Italic") == "-1"

	if v := get("Outline"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			return "", theme.Theme{}, fmt.Errorf("invalid outline width %q", v)
		}
		t.Outline = theme.Outline{Enabled: width > 0, Width: width}
	}
	if v := get("Shadow"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return "", theme.Theme{}, fmt.Errorf("invalid shadow depth %q", v)
		}
		t.Shadow = theme.Shadow{Enabled: depth > 0, OffsetX: depth, OffsetY: depth}
	}
	if v := get("Alignment"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil || code < 1 || code > 9 {
			return "", theme.Theme{}, fmt.Errorf("invalid alignment %q", v)
		}
		t.Layout.Position, t.Layout.Alignment = positionFromAlignment(code)
	}
	if v := get("MarginL"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			t.Layout.MarginX = m
		}
	}
	if v := get("MarginV"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			t.Layout.MarginY = m
		}
	}

	// animation is carried inline per Dialogue line, not in the style;
	// reset so decoded events only reflect what the script declares
	t.Animation = theme.Animation{Entry: theme.AnimationNone, Exit: theme.AnimationNone}
	return name, t, nil
}

var (
	fadeTagRe    = regexp.MustCompile(`\\fad\((\d+),(\d+)\)`)
	popInTagRe   = regexp.MustCompile(`\\fscx50\\fscy50\\t\(0,(\d+),`)
	bounceTagRe  = regexp.MustCompile(`\\fscx80\\fscy80\\t\(0,(\d+),`)
	karaokeREx   = regexp.MustCompile(`\{\\c[^}]*?\\t\((\d+),\d+,\\c[^)]*\)\\t\((\d+),\d+,[^}]*\}([^{]*)`)
	popOutTagRe  = regexp.MustCompile(`\\t\((\d+),(\d+),\\fscx50\\fscy50\\alpha`)
	leadingTagRe = regexp.MustCompile(`^(\{[^}]*\})+`)
)

func parseDialogueLine(content string, cols []string, styles map[string]theme.Theme) (theme.StyledEvent, error) {
	fields := splitFields(content, len(cols))
	if len(fields) < len(cols) {
		return theme.StyledEvent{}, fmt.Errorf("expected %d dialogue fields, got %d", len(cols), len(fields))
	}

	get := func(col string) string {
		for i, c := range cols {
			if strings.EqualFold(c, col) {
				return fields[i]
			}
		}
		return ""
	}

	start, err := assTimeFromString(strings.TrimSpace(get("Start")))
	if err != nil {
		return theme.StyledEvent{}, fmt.Errorf("invalid start timestamp: %v", err)
	}
	end, err := assTimeFromString(strings.TrimSpace(get("End")))
	if err != nil {
		return theme.StyledEvent{}, fmt.Errorf("invalid end timestamp: %v", err)
	}
	if end <= start {
		return theme.StyledEvent{}, fmt.Errorf("dialogue ends at %v before it starts at %v", end, start)
	}

	style := theme.Default()
	if t, ok := styles[strings.TrimSpace(get("Style"))]; ok {
		style = t
	}

	rawText := get("Text")
	anim, words := parseInlineEffects(rawText, start, end)
	style.Animation = anim
	style.Animation.Karaoke = len(words) > 0

	text := unescapeASSText(stripOverrideTags(rawText))
	if len(words) > 0 {
		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.Text
		}
		text = strings.Join(texts, " ")
	}

	return theme.StyledEvent{
		Start:     start,
		End:       end,
		Text:      strings.TrimSpace(text),
		Words:     words,
		Style:     style,
		Animation: style.Animation,
	}, nil
}

// parseInlineEffects folds override tags back into the declarative
// animation model and recovers karaoke word timings from the per-word
// color transitions.
func parseInlineEffects(text string, start, end time.Duration) (theme.Animation, []segment.Word) {
	anim := theme.Animation{Entry: theme.AnimationNone, Exit: theme.AnimationNone}

	preamble := leadingTagRe.FindString(text)
	fadeIn, fadeOut := 0, 0
	if m := fadeTagRe.FindStringSubmatch(preamble); m != nil {
		fadeIn, _ = strconv.Atoi(m[1])
		fadeOut, _ = strconv.Atoi(m[2])
	}

	if m := bounceTagRe.FindStringSubmatch(preamble); m != nil {
		// bounce transform spans a third of the declared duration
		if t1, err := strconv.Atoi(m[1]); err == nil {
			anim.Entry = theme.AnimationBounce
			anim.Duration = time.Duration(t1*3) * time.Millisecond
		}
	} else if m := popInTagRe.FindStringSubmatch(preamble); m != nil {
		if d, err := strconv.Atoi(m[1]); err == nil {
			anim.Entry = theme.AnimationPop
			anim.Duration = time.Duration(d) * time.Millisecond
		}
	} else if fadeIn > 0 {
		anim.Entry = theme.AnimationFade
		anim.Duration = time.Duration(fadeIn) * time.Millisecond
	}

	if m := popOutTagRe.FindStringSubmatch(preamble); m != nil {
		if from, err := strconv.Atoi(m[1]); err == nil {
			if to, err := strconv.Atoi(m[2]); err == nil {
				anim.Exit = theme.AnimationPop
				if anim.Duration == 0 {
					anim.Duration = time.Duration(to-from) * time.Millisecond
				}
			}
		}
	} else if fadeOut > 0 {
		anim.Exit = theme.AnimationFade
		if anim.Duration == 0 {
			anim.Duration = time.Duration(fadeOut) * time.Millisecond
		}
	}

	var words []segment.Word
	for _, m := range karaokeREx.FindAllStringSubmatch(text, -1) {
		startRel, err1 := strconv.Atoi(m[1])
		endRel, err2 := strconv.Atoi(m[2])
		// a hard break may trail the word when line wrapping kicked in
		word := strings.TrimSpace(strings.ReplaceAll(m[3], "\\N", " "))
		if err1 != nil || err2 != nil || word == "" {
			continue
		}
		words = append(words, segment.Word{
			Text:  word,
			Start: start + time.Duration(startRel)*time.Millisecond,
			End:   start + time.Duration(endRel)*time.Millisecond,
		})
	}
	return anim, words
}

func assTimeFromString(ts string) (time.Duration, error) {
	matches := assTimestampRe.FindStringSubmatch(ts)
	if matches == nil {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	s, _ := strconv.Atoi(matches[3])
	cs, _ := strconv.Atoi(matches[4])
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(cs)*10*time.Millisecond, nil
}
