package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/hlshorts/internal/logging"
	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
)

// Caption styling: a yellow word with a black stroke over a larger blue glow.
const (
	captionColor       = "0xe0ff2e"
	captionBorder      = 8
	captionBorderColor = "black"
	glowColor          = "0x0000ff"
	glowBorder         = 12
	glowBorderColor    = "black@0.5"
	glowExtraSize      = 6
)

type Options struct {
	FFmpegPath   string
	FFprobePath  string
	TempDir      string
	FPS          int
	VideoCodec   string
	AudioCodec   string
	VideoBitrate string
	Preset       string
	Log          logrus.FieldLogger
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	tmp     string
	fps     int
	vcodec  string
	acodec  string
	bitrate string
	preset  string
	log     logrus.FieldLogger
}

func New(o Options) *Adapter {
	if o.FFmpegPath == "" {
		o.FFmpegPath = "ffmpeg"
	}
	if o.FFprobePath == "" {
		o.FFprobePath = "ffprobe"
	}
	if o.FPS <= 0 {
		o.FPS = 24
	}
	if o.VideoCodec == "" {
		o.VideoCodec = "libx264"
	}
	if o.AudioCodec == "" {
		o.AudioCodec = "aac"
	}
	if o.VideoBitrate == "" {
		o.VideoBitrate = "1000k"
	}
	if o.Preset == "" {
		o.Preset = "ultrafast"
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	return &Adapter{
		ffmpeg:  o.FFmpegPath,
		ffprobe: o.FFprobePath,
		tmp:     o.TempDir,
		fps:     o.FPS,
		vcodec:  o.VideoCodec,
		acodec:  o.AudioCodec,
		bitrate: o.VideoBitrate,
		preset:  o.Preset,
		log:     o.Log.WithField("component", "ffmpeg"),
	}
}

type source struct {
	info   types.MediaInfo
	closed bool
}

func (s *source) Info() types.MediaInfo { return s.info }

func (s *source) Close() error {
	s.closed = true
	return nil
}

type clip struct {
	path     string
	duration float64
}

func (c *clip) Path() string      { return c.path }
func (c *clip) Duration() float64 { return c.duration }

func (c *clip) Close() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Open probes the input and returns a handle describing it.
func (a *Adapter) Open(ctx context.Context, path string) (ports.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	info, err := a.probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return &source{info: info}, nil
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *Adapter) probe(ctx context.Context, path string) (types.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height,duration:format=duration",
		"-of", "json",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return types.MediaInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, string(ee.Stderr))
		}
		return types.MediaInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(path, b)
}

func parseProbe(path string, b []byte) (types.MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	info := types.MediaInfo{Path: path}
	var videoDur float64
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width, info.Height = s.Width, s.Height
				videoDur, _ = strconv.ParseFloat(s.Duration, 64)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Width == 0 || info.Height == 0 {
		return types.MediaInfo{}, fmt.Errorf("ffprobe %s: no video stream", path)
	}
	if d, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil && d > 0 {
		info.Duration = d
	} else {
		info.Duration = videoDur
	}
	if info.Duration <= 0 {
		return types.MediaInfo{}, fmt.Errorf("ffprobe %s: unknown duration", path)
	}
	return info, nil
}

// Compose renders plan to a temporary clip.
func (a *Adapter) Compose(ctx context.Context, src ports.Source, plan types.CompositePlan) (ports.Clip, error) {
	info := src.Info()
	return a.render(ctx, "composite", plan.Duration(), func(out string) []string {
		return a.composeArgs(info, plan, out)
	})
}

// Stretch renders the raw range scaled to the canvas.
func (a *Adapter) Stretch(ctx context.Context, src ports.Source, start, end float64, canvas types.Size) (ports.Clip, error) {
	info := src.Info()
	return a.render(ctx, "stretch", end-start, func(out string) []string {
		return a.stretchArgs(info, start, end, canvas, out)
	})
}

func (a *Adapter) composeArgs(info types.MediaInfo, plan types.CompositePlan, out string) []string {
	in := ffmpeggo.Input(info.Path, ffmpeggo.KwArgs{"ss": fmtSeconds(plan.Start), "t": fmtSeconds(plan.Duration())})

	var bg *ffmpeggo.Stream
	switch plan.Background {
	case types.BackgroundSolid:
		bg = solidCanvas(plan.Canvas, plan.Duration(), a.fps)
	default:
		bg = in.Video().
			Filter("scale", ffmpeggo.Args{strconv.Itoa(plan.Canvas.W), strconv.Itoa(plan.Canvas.H)}).
			Filter("setsar", ffmpeggo.Args{"1"}).
			Filter("gblur", ffmpeggo.Args{}, ffmpeggo.KwArgs{"sigma": fmtFloat(plan.BlurSigma)})
	}
	fg := in.Video().
		Filter("scale", ffmpeggo.Args{strconv.Itoa(plan.Foreground.W), strconv.Itoa(plan.Foreground.H)}).
		Filter("setsar", ffmpeggo.Args{"1"})
	v := ffmpeggo.Filter([]*ffmpeggo.Stream{bg, fg}, "overlay",
		ffmpeggo.Args{strconv.Itoa(plan.Foreground.X), strconv.Itoa(plan.Foreground.Y)})
	for _, c := range plan.Captions {
		v = drawCaption(v, c, plan.FontFile)
	}
	return a.outputArgs(v, a.audio(in, info, plan.Duration()), out)
}

func (a *Adapter) stretchArgs(info types.MediaInfo, start, end float64, canvas types.Size, out string) []string {
	dur := end - start
	in := ffmpeggo.Input(info.Path, ffmpeggo.KwArgs{"ss": fmtSeconds(start), "t": fmtSeconds(dur)})
	v := in.Video().
		Filter("scale", ffmpeggo.Args{strconv.Itoa(canvas.W), strconv.Itoa(canvas.H)}).
		Filter("setsar", ffmpeggo.Args{"1"})
	return a.outputArgs(v, a.audio(in, info, dur), out)
}

func (a *Adapter) outputArgs(v, audio *ffmpeggo.Stream, out string) []string {
	return ffmpeggo.Output([]*ffmpeggo.Stream{v, audio}, out, a.encodeArgs()).OverWriteOutput().GetArgs()
}

// audio keeps every clip stereo-compatible for concat; silent sources get a
// generated silent track.
func (a *Adapter) audio(in *ffmpeggo.Stream, info types.MediaInfo, dur float64) *ffmpeggo.Stream {
	if info.HasAudio {
		return in.Audio()
	}
	return ffmpeggo.Input("anullsrc=r=44100:cl=stereo", ffmpeggo.KwArgs{"f": "lavfi", "t": fmtSeconds(dur)}).Audio()
}

func solidCanvas(canvas types.Size, dur float64, fps int) *ffmpeggo.Stream {
	color := fmt.Sprintf("color=c=black:s=%dx%d:d=%s:r=%d", canvas.W, canvas.H, fmtSeconds(dur), fps)
	return ffmpeggo.Input(color, ffmpeggo.KwArgs{"f": "lavfi"}).Video()
}

// drawCaption shows c on [Start, End). Adjacent words share a boundary, so
// the window is half-open to keep exactly one word on screen at that instant.
func drawCaption(v *ffmpeggo.Stream, c types.Caption, fontFile string) *ffmpeggo.Stream {
	enable := fmt.Sprintf("gte(t,%s)*lt(t,%s)", fmtSeconds(c.Start), fmtSeconds(c.End))
	glow := captionArgs(c.Text, c.FontSize+glowExtraSize, glowColor, glowBorder, glowBorderColor, enable, fontFile)
	main := captionArgs(c.Text, c.FontSize, captionColor, captionBorder, captionBorderColor, enable, fontFile)
	return v.Filter("drawtext", ffmpeggo.Args{}, glow).Filter("drawtext", ffmpeggo.Args{}, main)
}

func captionArgs(text string, size int, color string, border int, borderColor, enable, fontFile string) ffmpeggo.KwArgs {
	kw := ffmpeggo.KwArgs{
		"text":        escapeOption(text),
		"expansion":   "none",
		"fontsize":    strconv.Itoa(size),
		"fontcolor":   color,
		"borderw":     strconv.Itoa(border),
		"bordercolor": borderColor,
		"x":           "(w-text_w)/2",
		"y":           "(h-text_h)/2",
		"enable":      enable,
	}
	if fontFile != "" {
		kw["fontfile"] = escapeOption(fontFile)
	}
	return kw
}

var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

// escapeOption escapes a filter option value. ffmpeg-go only adds the graph
// level escaping on top, which leaves ':' splitting the option list.
func escapeOption(s string) string {
	return optionEscaper.Replace(s)
}

func (a *Adapter) render(ctx context.Context, kind string, dur float64, build func(out string) []string) (ports.Clip, error) {
	out, err := a.tempClipPath()
	if err != nil {
		return nil, err
	}
	if err := a.run(ctx, "render "+kind, build(out)); err != nil {
		_ = os.Remove(out)
		return nil, err
	}
	return &clip{path: out, duration: dur}, nil
}

func (a *Adapter) encodeArgs() ffmpeggo.KwArgs {
	return ffmpeggo.KwArgs{
		"c:v":     a.vcodec,
		"c:a":     a.acodec,
		"b:v":     a.bitrate,
		"preset":  a.preset,
		"r":       strconv.Itoa(a.fps),
		"pix_fmt": "yuv420p",
		"ar":      "44100",
		"ac":      "2",
	}
}

// Concat joins clips with the concat demuxer. With fade > 0 the result is
// re-encoded with fades at both ends, otherwise streams are copied.
func (a *Adapter) Concat(ctx context.Context, clips []ports.Clip, outPath string, fade float64) error {
	if len(clips) == 0 {
		return errors.New("concat: no clips")
	}
	list, err := a.writeConcatList(clips)
	if err != nil {
		return err
	}
	defer os.Remove(list)

	var total float64
	for _, c := range clips {
		total += c.Duration()
	}

	kw := ffmpeggo.KwArgs{"c": "copy", "movflags": "+faststart"}
	if fade > 0 {
		kw = a.encodeArgs()
		kw["movflags"] = "+faststart"
		kw["vf"] = fadeFilter("fade", fade, total)
		kw["af"] = fadeFilter("afade", fade, total)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	args := ffmpeggo.Input(list, ffmpeggo.KwArgs{"f": "concat", "safe": "0"}).
		Output(outPath, kw).
		OverWriteOutput().
		GetArgs()
	return a.run(ctx, "concat", args)
}

func fadeFilter(name string, fade, total float64) string {
	outStart := total - fade
	if outStart < 0 {
		outStart = 0
	}
	return fmt.Sprintf("%s=t=in:st=0:d=%s,%s=t=out:st=%s:d=%s",
		name, fmtSeconds(fade), name, fmtSeconds(outStart), fmtSeconds(fade))
}

func (a *Adapter) writeConcatList(clips []ports.Clip) (string, error) {
	f, err := os.CreateTemp(a.tmp, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("concat list: %w", err)
	}
	defer f.Close()
	for _, c := range clips {
		p, err := filepath.Abs(c.Path())
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`)); err != nil {
			return "", fmt.Errorf("concat list: %w", err)
		}
	}
	return f.Name(), nil
}

func (a *Adapter) tempClipPath() (string, error) {
	f, err := os.CreateTemp(a.tmp, "segment-*.mp4")
	if err != nil {
		return "", fmt.Errorf("temp clip: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (a *Adapter) run(ctx context.Context, what string, args []string) error {
	a.log.WithField("args", strings.Join(args, " ")).Debug(what)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w\n%s", what, err, tail(string(b), 2000))
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
