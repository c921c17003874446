package highlights

import (
	"fmt"

	"github.com/forPelevin/hlshorts/internal/types"
)

// Dropped is an entry removed because it does not fit the source timeline.
type Dropped struct {
	Index   int
	Segment types.HighlightSegment
	Reason  string
}

// FilterByDuration keeps entries that lie inside [0, sourceDuration].
// An entry ending exactly at the source end is kept; anything past it is
// dropped without rounding. Order is preserved.
func FilterByDuration(set types.HighlightSet, sourceDuration float64) (types.HighlightSet, []Dropped) {
	kept := types.HighlightSet{VideoSummary: make([]types.HighlightSegment, 0, len(set.VideoSummary))}
	var dropped []Dropped
	for i, s := range set.VideoSummary {
		switch {
		case s.StartTime >= sourceDuration:
			dropped = append(dropped, Dropped{Index: i, Segment: s,
				Reason: fmt.Sprintf("start_time %.3fs is beyond source duration %.3fs", s.StartTime, sourceDuration)})
		case s.EndTime > sourceDuration:
			dropped = append(dropped, Dropped{Index: i, Segment: s,
				Reason: fmt.Sprintf("end_time %.3fs exceeds source duration %.3fs", s.EndTime, sourceDuration)})
		default:
			kept.VideoSummary = append(kept.VideoSummary, s)
		}
	}
	return kept, dropped
}
