package filecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forPelevin/hlshorts/internal/types"
)

func sampleSet() types.HighlightSet {
	return types.HighlightSet{VideoSummary: []types.HighlightSegment{
		{StartTime: 0, EndTime: 40, Description: "intro", Category: "setup"},
		{StartTime: 50, EndTime: 80, Description: "payoff", Category: "punchline"},
	}}
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir())

	if _, ok, err := c.Get(ctx, "abc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Put(ctx, "abc", sampleSet(), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got.VideoSummary) != 2 || got.VideoSummary[1] != sampleSet().VideoSummary[1] {
		t.Fatalf("unexpected set: %+v", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Put(ctx, "k", sampleSet(), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(time.Hour)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss at expiry")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := New(dir).Get(context.Background(), "bad"); ok || err != nil {
		t.Fatalf("expected silent miss, got ok=%v err=%v", ok, err)
	}
}

func TestCache_RejectsUnsafeKey(t *testing.T) {
	c := New(t.TempDir())
	if err := c.Put(context.Background(), "../escape", sampleSet(), 0); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
