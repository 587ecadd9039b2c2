package subtitle

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// WordSpan is a single word-level caption cue.
type WordSpan struct {
	Ordinal int
	Text    string
	StartMS int64
	EndMS   int64
}

// ParseWordsFile reads a word-level SRT file from disk.
func ParseWordsFile(path string) ([]WordSpan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	words, err := ParseWords(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse srt %s: %w", path, err)
	}
	return words, nil
}

// ParseWords decodes word-level SRT content into ordered cues. Cue numbers in
// the file are ignored; ordinals are assigned by position, starting at zero.
func ParseWords(content string) ([]WordSpan, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")

	var words []WordSpan
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		timingLine := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingLine = i
				break
			}
		}
		if timingLine == -1 || timingLine == len(lines)-1 {
			return nil, fmt.Errorf("malformed cue %q", block)
		}
		parts := strings.Split(lines[timingLine], "-->")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed timing line %q", lines[timingLine])
		}
		startMS, err := parseTimestampMillis(parts[0])
		if err != nil {
			return nil, err
		}
		endMS, err := parseTimestampMillis(parts[1])
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(strings.Join(lines[timingLine+1:], " "))
		words = append(words, WordSpan{
			Ordinal: len(words),
			Text:    norm.NFC.String(text),
			StartMS: startMS,
			EndMS:   endMS,
		})
	}
	return words, nil
}

func parseTimestampMillis(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Some generators emit a period instead of the SRT-standard comma.
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return int64(hours)*3600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + int64(millis), nil
}
