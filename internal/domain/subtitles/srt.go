package subtitles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/hlshorts/internal/types"
)

var (
	reBraces   = regexp.MustCompile(`\{.*?\}`)
	reBrackets = regexp.MustCompile(`\[.*?\]`)
)

// Result is the outcome of parsing one SRT document.
type Result struct {
	Subtitles []types.Subtitle
	// Blocks counts every non-empty block seen, parsed or not.
	Blocks  int
	Skipped []SkippedBlock
}

// SkippedBlock records a block that could not be parsed.
type SkippedBlock struct {
	Line   int // 1-based line of the block's first line
	Reason string
}

// Parse reads SRT content. Malformed blocks are skipped and recorded in
// Result.Skipped; Parse itself never fails. Subtitles keep file order.
func Parse(content string) Result {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")

	var res Result
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		blockStart := i
		end := i
		for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
			end++
		}
		res.Blocks++

		sub, err := parseBlock(lines[blockStart:end])
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedBlock{Line: blockStart + 1, Reason: err.Error()})
		} else {
			res.Subtitles = append(res.Subtitles, sub)
		}
		i = end
	}
	return res
}

func parseBlock(block []string) (types.Subtitle, error) {
	// index line, time line, one or more text lines
	if len(block) < 3 {
		return types.Subtitle{}, fmt.Errorf("block has %d lines, want at least 3", len(block))
	}
	start, end, err := ParseTimeRange(block[1])
	if err != nil {
		return types.Subtitle{}, err
	}
	if end <= start {
		return types.Subtitle{}, fmt.Errorf("end %.3f is not after start %.3f", end, start)
	}

	parts := make([]string, 0, len(block)-2)
	for _, l := range block[2:] {
		parts = append(parts, strings.TrimSpace(l))
	}
	return types.Subtitle{Start: start, End: end, Text: CleanText(strings.Join(parts, " "))}, nil
}

// CleanText removes {...} and [...] annotations and normalizes whitespace.
func CleanText(s string) string {
	s = reBraces.ReplaceAllString(s, "")
	s = reBrackets.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// ParseTimeRange parses "HH:MM:SS,mmm --> HH:MM:SS,mmm".
func ParseTimeRange(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time range %q", strings.TrimSpace(line))
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Some files carry position hints after the end time.
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("invalid time range %q", strings.TrimSpace(line))
	}
	end, err := ParseTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp converts HH:MM:SS,mmm (or HH:MM:SS.mmm) to seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	hms := strings.Split(strings.ReplaceAll(value, ",", "."), ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.ParseFloat(hms[2], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}

// ToTranscript joins subtitle texts with newlines. Timing is ignored.
func ToTranscript(subs []types.Subtitle) string {
	texts := make([]string, 0, len(subs))
	for _, s := range subs {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, "\n")
}

// Format renders subtitles back to SRT text, numbering from 1.
func Format(subs []types.Subtitle) string {
	var b strings.Builder
	for i, s := range subs {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(s.Start), FormatTimestamp(s.End), s.Text)
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(sec*1000 + 0.5)
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
