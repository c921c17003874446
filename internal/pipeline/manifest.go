package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/forPelevin/hlshorts/internal/types"
)

func buildManifest(cfg Config, res Result) types.Manifest {
	asm := res.Assemble
	m := types.Manifest{
		RunID:             res.RunID,
		Input:             cfg.Input,
		Subtitles:         cfg.Subtitles,
		Output:            res.Output,
		Timestamps:        res.Timestamps,
		Source:            res.Source,
		Attempts:          res.Attempts,
		Accepted:          res.Accepted,
		SourceDurationSec: asm.SourceDuration,
		DurationSec:       asm.OutputDuration,
		FadeApplied:       asm.FadeApplied,
		Segments:          make([]types.ManifestSegment, 0, len(asm.Segments)),
		Published:         res.Published,
	}
	for _, rep := range asm.Segments {
		m.Segments = append(m.Segments, types.ManifestSegment{
			Index:        rep.Index + 1,
			StartSec:     rep.Segment.StartTime,
			EndSec:       rep.Segment.EndTime,
			Category:     rep.Segment.Category,
			Description:  rep.Segment.Description,
			Status:       rep.Status,
			Strategy:     rep.Strategy,
			Reason:       rep.Reason(),
			Captions:     rep.Captions,
			SkippedWords: rep.SkippedWords,
		})
	}
	for _, d := range asm.Dropped {
		m.Dropped = append(m.Dropped, types.ManifestSegment{
			Index:       d.Index + 1,
			StartSec:    d.Segment.StartTime,
			EndSec:      d.Segment.EndTime,
			Category:    d.Segment.Category,
			Description: d.Segment.Description,
			Status:      "dropped",
			Reason:      d.Reason,
		})
	}
	return m
}

func writeManifest(path string, m types.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
