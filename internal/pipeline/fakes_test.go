package pipeline

import (
	"context"
	"fmt"

	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
)

type scriptedModel struct {
	replies []string
	err     error
	calls   [][]types.Message
}

func (m *scriptedModel) Complete(_ context.Context, msgs []types.Message) (string, error) {
	m.calls = append(m.calls, msgs)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.calls) - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	if i < 0 {
		return "", fmt.Errorf("no scripted reply")
	}
	return m.replies[i], nil
}

type fakeSource struct{ info types.MediaInfo }

func (s fakeSource) Info() types.MediaInfo { return s.info }
func (s fakeSource) Close() error          { return nil }

type fakeClip struct {
	path string
	dur  float64
}

func (c fakeClip) Path() string      { return c.path }
func (c fakeClip) Duration() float64 { return c.dur }
func (c fakeClip) Close() error      { return nil }

type fakeVideo struct {
	dur       float64
	opened    bool
	n         int
	concatOut string
}

func (v *fakeVideo) Open(_ context.Context, path string) (ports.Source, error) {
	v.opened = true
	return fakeSource{info: types.MediaInfo{Path: path, Duration: v.dur, Width: 1280, Height: 720, HasAudio: true}}, nil
}

func (v *fakeVideo) Compose(_ context.Context, _ ports.Source, plan types.CompositePlan) (ports.Clip, error) {
	v.n++
	return fakeClip{path: fmt.Sprintf("seg-%d.mp4", v.n), dur: plan.Duration()}, nil
}

func (v *fakeVideo) Stretch(_ context.Context, _ ports.Source, start, end float64, _ types.Size) (ports.Clip, error) {
	v.n++
	return fakeClip{path: fmt.Sprintf("seg-%d.mp4", v.n), dur: end - start}, nil
}

func (v *fakeVideo) Concat(_ context.Context, _ []ports.Clip, out string, _ float64) error {
	v.concatOut = out
	return nil
}

type fakePublisher struct {
	name string
	loc  string
	err  error
	got  types.PublishItem
}

func (p *fakePublisher) Name() string { return p.name }

func (p *fakePublisher) Publish(_ context.Context, item types.PublishItem) (string, error) {
	p.got = item
	return p.loc, p.err
}
