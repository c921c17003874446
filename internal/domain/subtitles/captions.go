package subtitles

import (
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/hlshorts/internal/types"
)

// Caption font sizes step down for long words so they stay on the canvas.
const (
	FontSizeDefault = 120
	FontSizeLong    = 90
	FontSizeXLong   = 70
)

// FontSize picks the caption font size for a word by its character count.
func FontSize(word string) int {
	n := utf8.RuneCountInString(word)
	switch {
	case n > 25:
		return FontSizeXLong
	case n > 15:
		return FontSizeLong
	default:
		return FontSizeDefault
	}
}

// DeriveCaptions returns one overlay per word of every subtitle overlapping
// [start, end). Each subtitle's clipped interval is split evenly across its
// words. Times are relative to start.
func DeriveCaptions(subs []types.Subtitle, start, end float64) []types.CaptionOverlay {
	segDur := end - start
	if segDur <= 0 {
		return nil
	}
	var out []types.CaptionOverlay
	for _, s := range subs {
		if !(s.End > start && s.Start < end) {
			continue
		}
		relStart := max(0, s.Start-start)
		relEnd := min(segDur, s.End-start)
		if relEnd <= relStart {
			continue
		}
		words := strings.Fields(s.Text)
		if len(words) == 0 {
			continue
		}
		step := (relEnd - relStart) / float64(len(words))
		for i, w := range words {
			ws := relStart + float64(i)*step
			out = append(out, types.CaptionOverlay{Word: w, Start: ws, End: ws + step})
		}
	}
	return out
}
