package subtitles

import (
	"math"
	"testing"

	"github.com/forPelevin/hlshorts/internal/types"
)

func TestParse_TwoCues(t *testing.T) {
	in := "1\n00:00:01,000 --> 00:00:03,000\nHello world\n\n2\n00:00:03,500 --> 00:00:05,000\nFoo\n"
	res := Parse(in)
	want := []types.Subtitle{
		{Start: 1.0, End: 3.0, Text: "Hello world"},
		{Start: 3.5, End: 5.0, Text: "Foo"},
	}
	if len(res.Subtitles) != len(want) {
		t.Fatalf("expected %d subtitles, got %d", len(want), len(res.Subtitles))
	}
	for i := range want {
		if res.Subtitles[i] != want[i] {
			t.Fatalf("subtitle %d = %+v, want %+v", i, res.Subtitles[i], want[i])
		}
	}
	if res.Blocks != 2 || len(res.Skipped) != 0 {
		t.Fatalf("unexpected diagnostics: blocks=%d skipped=%v", res.Blocks, res.Skipped)
	}
	if got := ToTranscript(res.Subtitles); got != "Hello world\nFoo" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestParse_StripsAnnotations(t *testing.T) {
	tests := map[string]string{
		"{\\an8}Hello there":     "Hello there",
		"[MUSIC] Hello":          "Hello",
		"Hi [laughs] you {b}ok":  "Hi you ok",
		"[only annotation]":      "",
		"multi\nline [x] text":   "multi line text",
	}
	for text, want := range tests {
		t.Run(text, func(t *testing.T) {
			res := Parse("1\n00:00:00,000 --> 00:00:01,000\n" + text + "\n")
			if len(res.Subtitles) != 1 {
				t.Fatalf("expected 1 subtitle, got %d (%v)", len(res.Subtitles), res.Skipped)
			}
			if got := res.Subtitles[0].Text; got != want {
				t.Fatalf("text = %q, want %q", got, want)
			}
		})
	}
}

func TestParse_SkipsMalformedBlocks(t *testing.T) {
	in := "1\n00:00:01,000 --> 00:00:02,000\nok\n\n" +
		"2\nnot a time\nbroken\n\n" +
		"3\n00:00:05,000\n\n" +
		"4\n00:00:09,000 --> 00:00:08,000\nbackwards\n\n" +
		"5\n00:00:10.250 --> 00:00:11.000\ndot separator\n"
	res := Parse(in)
	if len(res.Subtitles) != 2 {
		t.Fatalf("expected 2 parsed subtitles, got %d", len(res.Subtitles))
	}
	if res.Blocks != 5 {
		t.Fatalf("expected 5 blocks, got %d", res.Blocks)
	}
	if len(res.Skipped) != 3 {
		t.Fatalf("expected 3 skipped blocks, got %d: %v", len(res.Skipped), res.Skipped)
	}
	if res.Skipped[0].Line != 5 {
		t.Fatalf("expected first skipped block at line 5, got %d", res.Skipped[0].Line)
	}
	if res.Subtitles[1].Start != 10.25 {
		t.Fatalf("expected '.' separator to parse, got %v", res.Subtitles[1].Start)
	}
}

func TestParse_CRLFAndEmpty(t *testing.T) {
	res := Parse("1\r\n00:00:01,000 --> 00:00:02,000\r\nHi\r\n")
	if len(res.Subtitles) != 1 || res.Subtitles[0].Text != "Hi" {
		t.Fatalf("unexpected CRLF parse: %+v", res)
	}
	if res := Parse("   \n\n"); len(res.Subtitles) != 0 || res.Blocks != 0 {
		t.Fatalf("expected nothing from blank input, got %+v", res)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	subs := []types.Subtitle{
		{Start: 0.5, End: 1.25, Text: "one"},
		{Start: 3661.001, End: 3662.999, Text: "two words"},
		{Start: 2, End: 4, Text: "out of order"},
	}
	res := Parse(Format(subs))
	if len(res.Subtitles) != len(subs) {
		t.Fatalf("expected %d subtitles, got %d", len(subs), len(res.Subtitles))
	}
	for i := range subs {
		got := res.Subtitles[i]
		if math.Abs(got.Start-subs[i].Start) > 1e-9 || math.Abs(got.End-subs[i].End) > 1e-9 || got.Text != subs[i].Text {
			t.Fatalf("round trip %d: got %+v, want %+v", i, got, subs[i])
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:00,000", 0, false},
		{"01:02:03,456", 3723.456, false},
		{"00:01:00.5", 60.5, false},
		{"1:2", 0, true},
		{"aa:00:00,000", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseTimestamp(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
