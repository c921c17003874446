package highlights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/hlshorts/internal/types"
)

const keyLegacySegments = "segments"

// LoadDocument reads a highlight document from disk. Files ending in .yaml
// or .yml are read as YAML, everything else as JSON.
func LoadDocument(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read highlights %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse highlights %s: %w", path, err)
		}
		if doc == nil {
			return nil, fmt.Errorf("parse highlights %s: empty document", path)
		}
		return doc, nil
	default:
		doc, err := decodeObject(b)
		if err != nil {
			return nil, fmt.Errorf("parse highlights %s: %w", path, err)
		}
		return doc, nil
	}
}

// AdaptLegacy rewrites a bare {"segments": [...]} document into the
// video_summary shape. Documents that already carry video_summary, or carry
// neither key, are returned unchanged.
func AdaptLegacy(doc map[string]any) (map[string]any, bool) {
	if doc == nil {
		return doc, false
	}
	if _, ok := doc[keySummary]; ok {
		return doc, false
	}
	segs, ok := doc[keyLegacySegments]
	if !ok {
		return doc, false
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == keyLegacySegments {
			continue
		}
		out[k] = v
	}
	out[keySummary] = segs
	return out, true
}

// Marshal renders a set as indented JSON with a trailing newline. Output is
// deterministic for equal sets.
func Marshal(set types.HighlightSet) ([]byte, error) {
	if set.VideoSummary == nil {
		set.VideoSummary = []types.HighlightSegment{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile marshals set to path.
func WriteFile(path string, set types.HighlightSet) error {
	b, err := Marshal(set)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ToDocument converts a decoded set back to generic form so it can go
// through Decode like any other source.
func ToDocument(set types.HighlightSet) (map[string]any, error) {
	b, err := Marshal(set)
	if err != nil {
		return nil, err
	}
	return decodeObject(b)
}
