package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/hlshorts/internal/domain/highlights"
	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
)

// ErrNoSegments means nothing was left to put in the output.
var ErrNoSegments = errors.New("no segments to render")

const DefaultFade = 0.5

type AssembleInput struct {
	SourcePath string
	// Document is the highlight set in generic form; it is validated before
	// any media work starts.
	Document   map[string]any
	OutputPath string
	Subtitles  []types.Subtitle
	// TimestampsPath receives the filtered set before rendering. Empty skips it.
	TimestampsPath string
	Render         RenderOptions
	// Fade in and out of the whole output, in seconds. Zero disables it.
	Fade float64
}

type AssembleResult struct {
	Set            types.HighlightSet
	Dropped        []highlights.Dropped
	Segments       []SegmentReport
	Rendered       int
	FadeApplied    bool
	SourceDuration float64
	OutputDuration float64
}

// Assemble validates the highlight document, renders every entry that fits
// the source in order, and concatenates the results into OutputPath. The
// source and every rendered clip are released before it returns.
func (u Usecase) Assemble(ctx context.Context, in AssembleInput) (AssembleResult, error) {
	log := u.d.Log.WithField("component", "assembler")
	var res AssembleResult

	set, err := highlights.Decode(in.Document)
	if err != nil {
		return res, err
	}
	log.WithField("entries", len(set.VideoSummary)).Info("highlight set validated")

	src, err := u.d.Video.Open(ctx, in.SourcePath)
	if err != nil {
		return res, fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.WithError(err).Warn("release source")
		}
	}()
	info := src.Info()
	res.SourceDuration = info.Duration

	kept, dropped := highlights.FilterByDuration(set, info.Duration)
	res.Set, res.Dropped = kept, dropped
	for _, d := range dropped {
		log.WithField("segment", d.Index+1).Warnf("skipping entry: %s", d.Reason)
	}
	if len(kept.VideoSummary) == 0 {
		return res, fmt.Errorf("%w: every entry is beyond the source duration (%.3fs)", ErrNoSegments, info.Duration)
	}
	log.Infof("using %d of %d entries, %.2fs total", len(kept.VideoSummary), len(set.VideoSummary), kept.TotalDuration())

	if in.TimestampsPath != "" {
		if err := highlights.WriteFile(in.TimestampsPath, kept); err != nil {
			return res, fmt.Errorf("write timestamps: %w", err)
		}
		log.WithField("path", in.TimestampsPath).Info("timestamps saved")
	}

	var clips []ports.Clip
	defer func() {
		for _, c := range clips {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("release clip")
			}
		}
	}()

	for i, seg := range kept.VideoSummary {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log.WithFields(logrus.Fields{
			"segment":  i + 1,
			"of":       len(kept.VideoSummary),
			"range":    fmt.Sprintf("%.1fs-%.1fs", seg.StartTime, seg.EndTime),
			"category": seg.Category,
		}).Info("rendering segment")
		clip, rep := u.RenderSegment(ctx, src, i, seg, in.Subtitles, in.Render)
		res.Segments = append(res.Segments, rep)
		if clip == nil {
			continue
		}
		clips = append(clips, clip)
		res.OutputDuration += clip.Duration()
	}
	res.Rendered = len(clips)
	if len(clips) == 0 {
		return res, fmt.Errorf("%w: every segment failed to render", ErrNoSegments)
	}

	log.Infof("concatenating %d clips", len(clips))
	if in.Fade > 0 {
		err := u.d.Video.Concat(ctx, clips, in.OutputPath, in.Fade)
		if err == nil {
			res.FadeApplied = true
			log.WithField("path", in.OutputPath).Info("output written")
			return res, nil
		}
		if ctx.Err() != nil {
			return res, err
		}
		log.WithError(errors.New(firstLine(err))).Warn("fade failed, writing without it")
	}
	if err := u.d.Video.Concat(ctx, clips, in.OutputPath, 0); err != nil {
		return res, fmt.Errorf("write output: %w", err)
	}
	log.WithField("path", in.OutputPath).Info("output written")
	return res, nil
}
