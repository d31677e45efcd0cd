package media

import (
	"fmt"
	"strings"
	"time"
)

// parseVTT extracts timed cues from a WebVTT document. Cue ids, NOTE and
// STYLE blocks, inline tags, and the repeated lines auto-generated subtitles
// produce are all dropped.
func parseVTT(data string) []CaptionLine {
	var cues []CaptionLine
	var lastText string

	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.Contains(line, "-->") {
			continue
		}

		start, end, ok := parseCueTiming(line)
		if !ok {
			continue
		}

		var parts []string
		for i++; i < len(lines); i++ {
			text := strings.TrimSpace(stripCueTags(lines[i]))
			if text == "" {
				break
			}
			parts = append(parts, text)
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" || text == lastText {
			continue
		}
		lastText = text
		cues = append(cues, CaptionLine{Start: start, End: end, Text: text})
	}
	return cues
}

// parseCueTiming reads "00:00:01.000 --> 00:00:04.000" (settings after the
// end timestamp are ignored).
func parseCueTiming(line string) (start, end time.Duration, ok bool) {
	left, right, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, false
	}
	rightFields := strings.Fields(right)
	if len(rightFields) == 0 {
		return 0, 0, false
	}
	start, err := parseVTTTimestamp(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, false
	}
	end, err = parseVTTTimestamp(rightFields[0])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// parseVTTTimestamp accepts "HH:MM:SS.mmm" and "MM:SS.mmm".
func parseVTTTimestamp(value string) (time.Duration, error) {
	parts := strings.Split(value, ":")
	var hours, minutes int
	var seconds float64
	var err error
	switch len(parts) {
	case 3:
		if _, err = fmt.Sscanf(value, "%d:%d:%f", &hours, &minutes, &seconds); err != nil {
			return 0, fmt.Errorf("parse timestamp %q: %w", value, err)
		}
	case 2:
		if _, err = fmt.Sscanf(value, "%d:%f", &minutes, &seconds); err != nil {
			return 0, fmt.Errorf("parse timestamp %q: %w", value, err)
		}
	default:
		return 0, fmt.Errorf("parse timestamp %q: unexpected format", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), nil
}

// stripCueTags removes inline markup such as <c>, </c>, and the word-level
// timestamps auto-generated subtitles embed.
func stripCueTags(line string) string {
	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
