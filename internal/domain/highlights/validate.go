package highlights

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/forPelevin/hlshorts/internal/types"
)

const (
	keySummary     = "video_summary"
	keyStart       = "start_time"
	keyEnd         = "end_time"
	keyDescription = "description"
	keyCategory    = "category"
)

// ValidationError names the entry and field that made a document unusable.
// Entry is -1 for problems with the document itself.
type ValidationError struct {
	Entry  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Entry < 0 {
		return fmt.Sprintf("invalid highlight set: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid highlight set: video_summary[%d].%s: %s", e.Entry, e.Field, e.Reason)
}

// Decode validates a generic document and converts it to a HighlightSet.
// It checks structure only; durations and the source timeline are not
// consulted. The first violation is returned as a *ValidationError.
func Decode(doc map[string]any) (types.HighlightSet, error) {
	if doc == nil {
		return types.HighlightSet{}, &ValidationError{Entry: -1, Field: keySummary, Reason: "document is empty"}
	}
	raw, ok := doc[keySummary]
	if !ok {
		return types.HighlightSet{}, &ValidationError{Entry: -1, Field: keySummary, Reason: "missing"}
	}
	list, ok := raw.([]any)
	if !ok {
		return types.HighlightSet{}, &ValidationError{Entry: -1, Field: keySummary, Reason: "must be a list"}
	}

	set := types.HighlightSet{VideoSummary: make([]types.HighlightSegment, 0, len(list))}
	for i, e := range list {
		seg, err := decodeEntry(i, e)
		if err != nil {
			return types.HighlightSet{}, err
		}
		set.VideoSummary = append(set.VideoSummary, seg)
	}
	return set, nil
}

func decodeEntry(i int, e any) (types.HighlightSegment, error) {
	entry, ok := e.(map[string]any)
	if !ok {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: "entry", Reason: "must be an object"}
	}
	for _, k := range []string{keyStart, keyEnd, keyDescription, keyCategory} {
		if _, ok := entry[k]; !ok {
			return types.HighlightSegment{}, &ValidationError{Entry: i, Field: k, Reason: "missing"}
		}
	}

	start, ok := toFloat(entry[keyStart])
	if !ok {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: keyStart, Reason: "must be a number"}
	}
	end, ok := toFloat(entry[keyEnd])
	if !ok {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: keyEnd, Reason: "must be a number"}
	}
	if start < 0 {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: keyStart, Reason: "must not be negative"}
	}
	if end <= start {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: keyEnd, Reason: fmt.Sprintf("must be greater than start_time (%g <= %g)", end, start)}
	}

	desc, ok := entry[keyDescription].(string)
	if !ok {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: keyDescription, Reason: "must be a string"}
	}
	cat, ok := entry[keyCategory].(string)
	if !ok {
		return types.HighlightSegment{}, &ValidationError{Entry: i, Field: keyCategory, Reason: "must be a string"}
	}
	return types.HighlightSegment{StartTime: start, EndTime: end, Description: desc, Category: cat}, nil
}

// toFloat accepts the numeric shapes produced by the JSON and YAML decoders.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
