package types

// Subtitle is one timed SRT cue. Times are seconds on the source timeline.
type Subtitle struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
	Text  string  `json:"text"`
}

// HighlightSegment is one source-video range picked for the short.
type HighlightSegment struct {
	StartTime   float64 `json:"start_time" yaml:"start_time"`
	EndTime     float64 `json:"end_time" yaml:"end_time"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category" yaml:"category"`
}

// Duration returns the segment length in seconds.
func (s HighlightSegment) Duration() float64 { return s.EndTime - s.StartTime }

// HighlightSet is the persisted form shared by the LLM reply, the local
// override file and generated_timestamps.json.
type HighlightSet struct {
	VideoSummary []HighlightSegment `json:"video_summary" yaml:"video_summary"`
}

// TotalDuration sums segment lengths in seconds.
func (h HighlightSet) TotalDuration() float64 {
	var total float64
	for _, s := range h.VideoSummary {
		total += s.Duration()
	}
	return total
}

// CaptionOverlay is one word, timed relative to its rendered segment.
type CaptionOverlay struct {
	Word  string  `json:"word"`
	Start float64 `json:"relative_start"`
	End   float64 `json:"relative_end"`
}

// Role of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn sent to a chat model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Manifest records one run in the run directory.
type Manifest struct {
	RunID             string            `json:"run_id"`
	Input             string            `json:"input"`
	Subtitles         string            `json:"subtitles"`
	Output            string            `json:"output"`
	Timestamps        string            `json:"timestamps"`
	Source            string            `json:"highlight_source"`
	Attempts          int               `json:"selector_attempts,omitempty"`
	Accepted          bool              `json:"selector_accepted"`
	SourceDurationSec float64           `json:"source_duration_sec"`
	DurationSec       float64           `json:"duration_sec"`
	FadeApplied       bool              `json:"fade_applied"`
	Segments          []ManifestSegment `json:"segments"`
	Dropped           []ManifestSegment `json:"dropped,omitempty"`
	Published         []string          `json:"published,omitempty"`
}

type ManifestSegment struct {
	Index        int     `json:"index"`
	StartSec     float64 `json:"start_sec"`
	EndSec       float64 `json:"end_sec"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Strategy     string  `json:"strategy,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	Captions     int     `json:"captions"`
	SkippedWords int     `json:"skipped_words,omitempty"`
}

// MediaInfo describes a probed input video.
type MediaInfo struct {
	Path     string
	Duration float64 // seconds
	Width    int
	Height   int
	HasAudio bool
}

// Size is a frame size in pixels.
type Size struct {
	W int
	H int
}

// Placement positions a scaled layer on the canvas. X and Y may be negative
// when the layer is wider than the canvas.
type Placement struct {
	W int
	H int
	X int
	Y int
}

// Background selects how the canvas behind the foreground is filled.
type Background string

const (
	BackgroundBlur  Background = "blur"
	BackgroundSolid Background = "solid"
)

// Caption is one styled word of a composite.
type Caption struct {
	Text     string
	Start    float64 // relative to segment start
	End      float64
	FontSize int
}

// CompositePlan is everything needed to render one segment onto the canvas.
type CompositePlan struct {
	Start      float64
	End        float64
	Canvas     Size
	Background Background
	BlurSigma  float64
	Foreground Placement
	FontFile   string
	Captions   []Caption
}

// Duration of the planned segment in seconds.
func (p CompositePlan) Duration() float64 { return p.End - p.Start }

// PublishItem is a finished short handed to publishers.
type PublishItem struct {
	VideoPath      string
	TimestampsPath string
	Title          string
	Description    string
	Tags           []string
}
