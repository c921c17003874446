package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/hlshorts/internal/domain/render"
	"github.com/forPelevin/hlshorts/internal/domain/subtitles"
	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
)

// Strategy names, in the order they are tried.
const (
	StrategyComposite          = "composite"
	StrategySolid              = "composite-solid"
	StrategyCompositeNoCaption = "composite-nocaptions"
	StrategySolidNoCaption     = "composite-solid-nocaptions"
	StrategyStretch            = "stretch"
)

// Segment statuses.
const (
	StatusRendered = "rendered"
	StatusSkipped  = "skipped"
)

type RenderOptions struct {
	Canvas    types.Size
	FontFile  string
	BlurSigma float64
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Canvas.W <= 0 || o.Canvas.H <= 0 {
		o.Canvas = render.Canvas
	}
	if o.BlurSigma <= 0 {
		o.BlurSigma = 20
	}
	return o
}

// SegmentReport describes how one highlight entry was rendered.
type SegmentReport struct {
	Index        int
	Segment      types.HighlightSegment
	Status       string
	Strategy     string
	Failures     []render.Failure
	Captions     int
	SkippedWords int
}

// Reason summarizes the failures that led to the final outcome.
func (r SegmentReport) Reason() string {
	if len(r.Failures) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Strategy, firstLine(f.Err)))
	}
	return strings.Join(parts, "; ")
}

// RenderSegment renders one highlight onto the canvas. It tries a blurred
// composite, then a composite on black. When captions were planned both are
// retried without them before falling back to a plain stretch. A nil clip
// means every strategy failed and the segment should be skipped.
func (u Usecase) RenderSegment(
	ctx context.Context,
	src ports.Source,
	index int,
	seg types.HighlightSegment,
	subs []types.Subtitle,
	opts RenderOptions,
) (ports.Clip, SegmentReport) {
	opts = opts.withDefaults()
	log := u.d.Log.WithField("segment", index+1)
	rep := SegmentReport{Index: index, Segment: seg}

	captions, skipped := u.buildCaptions(subtitles.DeriveCaptions(subs, seg.StartTime, seg.EndTime), opts.FontFile, index)
	rep.Captions = len(captions)
	rep.SkippedWords = skipped

	info := src.Info()
	fg, layoutErr := render.ForegroundLayout(info.Width, info.Height, opts.Canvas)
	composite := func(bg types.Background, captions []types.Caption) func(context.Context) (ports.Clip, error) {
		return func(ctx context.Context) (ports.Clip, error) {
			if layoutErr != nil {
				return nil, layoutErr
			}
			return u.d.Video.Compose(ctx, src, types.CompositePlan{
				Start:      seg.StartTime,
				End:        seg.EndTime,
				Canvas:     opts.Canvas,
				Background: bg,
				BlurSigma:  opts.BlurSigma,
				Foreground: fg,
				FontFile:   opts.FontFile,
				Captions:   captions,
			})
		}
	}
	chain := render.Chain[ports.Clip]{
		{Name: StrategyComposite, Run: composite(types.BackgroundBlur, captions)},
		{Name: StrategySolid, Run: composite(types.BackgroundSolid, captions)},
	}
	if len(captions) > 0 {
		chain = append(chain,
			render.Strategy[ports.Clip]{Name: StrategyCompositeNoCaption, Run: composite(types.BackgroundBlur, nil)},
			render.Strategy[ports.Clip]{Name: StrategySolidNoCaption, Run: composite(types.BackgroundSolid, nil)},
		)
	}
	chain = append(chain, render.Strategy[ports.Clip]{Name: StrategyStretch, Run: func(ctx context.Context) (ports.Clip, error) {
		return u.d.Video.Stretch(ctx, src, seg.StartTime, seg.EndTime, opts.Canvas)
	}})

	out := chain.Run(ctx)
	rep.Failures = out.Failures
	for _, f := range out.Failures {
		log.WithError(f.Err).WithField("strategy", f.Strategy).Warn("render strategy failed")
	}
	if !out.OK {
		rep.Status = StatusSkipped
		log.Warn("segment could not be rendered, skipping")
		return nil, rep
	}
	rep.Status = StatusRendered
	rep.Strategy = out.Strategy
	if out.Strategy != StrategyComposite && out.Strategy != StrategySolid && rep.Captions > 0 {
		log.Warnf("captions could not be drawn, skipping %d words", rep.Captions)
		rep.SkippedWords += rep.Captions
		rep.Captions = 0
	}
	log.WithFields(logrus.Fields{
		"strategy": out.Strategy,
		"captions": rep.Captions,
	}).Info("segment rendered")
	return out.Value, rep
}

// buildCaptions styles overlay words. Words that cannot be drawn are
// skipped and counted.
func (u Usecase) buildCaptions(words []types.CaptionOverlay, fontFile string, index int) ([]types.Caption, int) {
	if len(words) == 0 {
		return nil, 0
	}
	log := u.d.Log.WithField("segment", index+1)
	if fontFile != "" {
		if err := checkReadable(fontFile); err != nil {
			log.WithError(err).Warnf("caption font unreadable, skipping %d words", len(words))
			return nil, len(words)
		}
	}
	out := make([]types.Caption, 0, len(words))
	skipped := 0
	for _, w := range words {
		if !hasPrintable(w.Word) {
			log.WithField("word", fmt.Sprintf("%q", w.Word)).Warn("caption word has nothing to draw, skipping")
			skipped++
			continue
		}
		out = append(out, types.Caption{
			Text:     w.Word,
			Start:    w.Start,
			End:      w.End,
			FontSize: subtitles.FontSize(w.Word),
		})
	}
	return out, skipped
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func hasPrintable(s string) bool {
	for _, r := range s {
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
