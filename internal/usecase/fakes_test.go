package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
)

type fakeSource struct {
	info   types.MediaInfo
	closed int
}

func (s *fakeSource) Info() types.MediaInfo { return s.info }
func (s *fakeSource) Close() error          { s.closed++; return nil }

type fakeClip struct {
	path   string
	dur    float64
	closed int
}

func (c *fakeClip) Path() string      { return c.path }
func (c *fakeClip) Duration() float64 { return c.dur }
func (c *fakeClip) Close() error      { c.closed++; return nil }

type concatCall struct {
	paths []string
	out   string
	fade  float64
}

type fakeVideo struct {
	src     *fakeSource
	openErr error

	// failCompose fails composites with these backgrounds.
	failCompose map[types.Background]bool
	// failCaptions fails composites that draw any caption.
	failCaptions bool
	failStretch  bool
	// failStart fails every strategy for segments starting here.
	failStart map[float64]bool

	concatErr map[float64]error

	plans    []types.CompositePlan
	stretch  int
	clips    []*fakeClip
	concats  []concatCall
	openedAt int
}

func newFakeVideo(dur float64) *fakeVideo {
	return &fakeVideo{src: &fakeSource{info: types.MediaInfo{Path: "in.mp4", Duration: dur, Width: 1920, Height: 1080, HasAudio: true}}}
}

func (f *fakeVideo) Open(_ context.Context, path string) (ports.Source, error) {
	f.openedAt++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.src, nil
}

func (f *fakeVideo) Compose(_ context.Context, _ ports.Source, plan types.CompositePlan) (ports.Clip, error) {
	f.plans = append(f.plans, plan)
	if f.failStart[plan.Start] || f.failCompose[plan.Background] {
		return nil, fmt.Errorf("compose %s failed\nffmpeg output", plan.Background)
	}
	if f.failCaptions && len(plan.Captions) > 0 {
		return nil, errors.New("drawtext: no font available")
	}
	return f.newClip(plan.Duration()), nil
}

func (f *fakeVideo) Stretch(_ context.Context, _ ports.Source, start, end float64, _ types.Size) (ports.Clip, error) {
	f.stretch++
	if f.failStart[start] || f.failStretch {
		return nil, errors.New("stretch failed")
	}
	return f.newClip(end - start), nil
}

func (f *fakeVideo) Concat(_ context.Context, clips []ports.Clip, out string, fade float64) error {
	call := concatCall{out: out, fade: fade}
	for _, c := range clips {
		call.paths = append(call.paths, c.Path())
	}
	f.concats = append(f.concats, call)
	return f.concatErr[fade]
}

func (f *fakeVideo) newClip(dur float64) *fakeClip {
	c := &fakeClip{path: fmt.Sprintf("clip-%d.mp4", len(f.clips)+1), dur: dur}
	f.clips = append(f.clips, c)
	return c
}

func (f *fakeVideo) allClosed() bool {
	for _, c := range f.clips {
		if c.closed != 1 {
			return false
		}
	}
	return true
}
