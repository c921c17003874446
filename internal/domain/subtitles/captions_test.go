package subtitles

import (
	"math"
	"strings"
	"testing"

	"github.com/forPelevin/hlshorts/internal/types"
)

func TestDeriveCaptions_SplitsEvenlyAndClips(t *testing.T) {
	subs := []types.Subtitle{
		{Start: 8, End: 12, Text: "before and inside"},
		{Start: 12, End: 14, Text: "two words"},
		{Start: 30, End: 31, Text: "outside"},
	}
	got := DeriveCaptions(subs, 10, 20)
	want := []types.CaptionOverlay{
		{Word: "before", Start: 0, End: 2.0 / 3},
		{Word: "and", Start: 2.0 / 3, End: 4.0 / 3},
		{Word: "inside", Start: 4.0 / 3, End: 2},
		{Word: "two", Start: 2, End: 3},
		{Word: "words", Start: 3, End: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d overlays, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Word != want[i].Word || math.Abs(got[i].Start-want[i].Start) > 1e-9 || math.Abs(got[i].End-want[i].End) > 1e-9 {
			t.Fatalf("overlay %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDeriveCaptions_NoOverlap(t *testing.T) {
	subs := []types.Subtitle{{Start: 0, End: 5, Text: "early"}, {Start: 20, End: 21, Text: "late"}}
	if got := DeriveCaptions(subs, 5, 20); len(got) != 0 {
		t.Fatalf("expected no overlays for touching intervals, got %+v", got)
	}
}

func TestDeriveCaptions_SkipsEmptyText(t *testing.T) {
	subs := []types.Subtitle{{Start: 0, End: 2, Text: ""}, {Start: 2, End: 3, Text: "hi"}}
	got := DeriveCaptions(subs, 0, 10)
	if len(got) != 1 || got[0].Word != "hi" {
		t.Fatalf("expected only 'hi', got %+v", got)
	}
}

func TestDeriveCaptions_ClampsToSegmentEnd(t *testing.T) {
	got := DeriveCaptions([]types.Subtitle{{Start: 9, End: 15, Text: "a b"}}, 0, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(got))
	}
	if got[1].End != 10 {
		t.Fatalf("expected last word to end at segment end, got %v", got[1].End)
	}
}

func TestFontSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 120}, {15, 120}, {16, 90}, {25, 90}, {26, 70},
	}
	for _, tt := range tests {
		if got := FontSize(strings.Repeat("x", tt.n)); got != tt.want {
			t.Fatalf("FontSize(len=%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
