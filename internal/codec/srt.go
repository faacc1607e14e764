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
)

// EncodeSRT serializes segments to the plain SubRip format: sequential
// 1-based indices regardless of source ids, canonical "\n" line endings,
// millisecond timestamps. Segments must be sorted and valid; anything
// else is an ErrEncodeInvariant.
func EncodeSRT(segments []segment.Segment) (string, error) {
	var prev time.Duration
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodeInvariant, err)
		}
		if seg.Start < prev {
			return "", fmt.Errorf("%w: segments not sorted at index %d", ErrEncodeInvariant, i)
		}
		prev = seg.Start
	}

	var sb strings.Builder
	for i, seg := range segments {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(formatSRTTime(seg.Start))
		sb.WriteString(" --> ")
		sb.WriteString(formatSRTTime(seg.End))
		sb.WriteString("\n")
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// WriteSRT encodes segments and writes the result to path.
func WriteSRT(segments []segment.Segment, path string) error {
	content, err := EncodeSRT(segments)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

var srtTimestampRe = regexp.MustCompile(
	`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*$`,
)

// DecodeSRT parses plain SubRip text. Both line-ending conventions and a
// trailing blank line are tolerated; source indices are ignored. Returned
// segments carry no ids; ingest them through the timeline.
func DecodeSRT(r io.Reader) ([]segment.Segment, error) {
	scanner := bufio.NewScanner(r)

	var segments []segment.Segment
	var current *segment.Segment
	var haveTimes bool
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && haveTimes {
			current.Text = strings.Join(textLines, "\n")
			segments = append(segments, *current)
		}
		current = nil
		haveTimes = false
		textLines = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err != nil {
				return nil, parseErrorf(lineNum, "expected cue index, got %q", line)
			}
			current = &segment.Segment{}
			continue
		}

		if !haveTimes {
			matches := srtTimestampRe.FindStringSubmatch(line)
			if matches == nil {
				return nil, parseErrorf(lineNum, "malformed timestamp line %q", line)
			}
			start, err := srtTimeFromParts(matches[1], matches[2], matches[3], matches[4])
			if err != nil {
				return nil, parseErrorf(lineNum, "invalid start timestamp: %v", err)
			}
			end, err := srtTimeFromParts(matches[5], matches[6], matches[7], matches[8])
			if err != nil {
				return nil, parseErrorf(lineNum, "invalid end timestamp: %v", err)
			}
			if end <= start {
				return nil, parseErrorf(lineNum, "cue ends at %v before it starts at %v", end, start)
			}
			current.Start = start
			current.End = end
			haveTimes = true
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitle text: %w", err)
	}
	return segments, nil
}

// DecodeSRTFile opens and decodes an SRT file.
func DecodeSRTFile(path string) ([]segment.Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return DecodeSRT(file)
}

func srtTimeFromParts(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
