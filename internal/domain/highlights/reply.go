package highlights

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ParseReply turns a raw model reply into a generic document.
//
// The strict path decodes the whole reply as one JSON object. When that
// fails and the reply mentions video_summary, the text between the first
// '{' and the last '}' is tried instead; salvaged reports that case.
// A nil document means the reply was unusable.
func ParseReply(raw string) (doc map[string]any, salvaged bool) {
	if m, err := decodeObject([]byte(raw)); err == nil {
		return m, false
	}
	if !strings.Contains(raw, "video_summary") {
		return nil, false
	}
	i := strings.Index(raw, "{")
	j := strings.LastIndex(raw, "}")
	if i < 0 || j <= i {
		return nil, false
	}
	m, err := decodeObject([]byte(raw[i : j+1]))
	if err != nil {
		return nil, false
	}
	return m, true
}

// decodeObject decodes exactly one JSON object, keeping numbers as json.Number.
func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("JSON value is not an object")
	}
	return m, nil
}

// summaryTotal sums end_time-start_time over video_summary. ok is false when
// the key is missing, is not a list, or an entry lacks numeric times.
func summaryTotal(doc map[string]any) (total float64, ok bool) {
	if doc == nil {
		return 0, false
	}
	list, isList := doc[keySummary].([]any)
	if !isList {
		return 0, false
	}
	for _, e := range list {
		entry, isMap := e.(map[string]any)
		if !isMap {
			return 0, false
		}
		start, okS := toFloat(entry[keyStart])
		end, okE := toFloat(entry[keyEnd])
		if !okS || !okE {
			return 0, false
		}
		total += end - start
	}
	return total, true
}
