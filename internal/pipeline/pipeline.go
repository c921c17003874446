package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/hlshorts/internal/config"
	"github.com/forPelevin/hlshorts/internal/domain/highlights"
	"github.com/forPelevin/hlshorts/internal/domain/subtitles"
	"github.com/forPelevin/hlshorts/internal/logging"
	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
	"github.com/forPelevin/hlshorts/internal/usecase"
)

// Highlight modes.
const (
	ModeLLM   = "llm"
	ModeLocal = "local"
)

// Where the highlight set of a run came from.
const (
	SourceLLM   = "llm"
	SourceCache = "cache"
	SourceLocal = "local"
)

const (
	OutputName     = "youtube_shorts_output.mp4"
	TimestampsName = "generated_timestamps.json"
	ManifestName   = "manifest.json"
)

type Config struct {
	Input     string
	Subtitles string
	Mode      string
	// HighlightsFile is the document used in local mode.
	HighlightsFile string
	// LegacySegments adapts a bare {"segments": [...]} document.
	LegacySegments bool
	NoCache        bool
	Settings       config.Config
	Log            logrus.FieldLogger
}

func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.Subtitles == "" {
		return errors.New("subtitles path is empty")
	}
	if _, err := os.Stat(c.Subtitles); err != nil {
		return fmt.Errorf("stat subtitles: %w", err)
	}
	mode := normalizeMode(c.Mode)
	switch mode {
	case ModeLLM:
	case ModeLocal:
		if c.HighlightsFile == "" {
			return errors.New("local mode needs a highlights file")
		}
		if _, err := os.Stat(c.HighlightsFile); err != nil {
			return fmt.Errorf("stat highlights: %w", err)
		}
	default:
		return fmt.Errorf("mode %q is not one of llm, local", c.Mode)
	}
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if mode == ModeLLM && c.Settings.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is required (set %s or llm.api_key)", config.ProviderKeyEnv(c.Settings.LLM.Provider))
	}
	return nil
}

// Deps overrides adapters built from Settings. Nil fields are built.
type Deps struct {
	Video      ports.VideoTool
	Model      ports.ChatModel
	Cache      ports.HighlightCache
	Publishers []ports.Publisher
}

type Result struct {
	RunID        string
	RunDir       string
	Output       string
	Timestamps   string
	ManifestPath string
	Source       string
	Attempts     int
	Accepted     bool
	Assemble     usecase.AssembleResult
	Published    []string
	Manifest     types.Manifest
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	return RunWith(ctx, cfg, Deps{})
}

// RunWith parses the subtitles, obtains a highlight set, assembles the short
// and records the run in manifest.json.
func RunWith(ctx context.Context, cfg Config, deps Deps) (Result, error) {
	log := cfg.Log
	if log == nil {
		log = logging.Discard()
	}
	s := cfg.Settings
	mode := normalizeMode(cfg.Mode)
	res := Result{RunID: uuid.NewString()}
	log = log.WithField("run", res.RunID)

	raw, err := os.ReadFile(cfg.Subtitles)
	if err != nil {
		return res, fmt.Errorf("read subtitles: %w", err)
	}
	parsed := subtitles.Parse(string(raw))
	for _, sk := range parsed.Skipped {
		log.WithField("line", sk.Line).Warnf("skipping subtitle block: %s", sk.Reason)
	}
	log.Infof("parsed %d subtitles (%d blocks skipped)", len(parsed.Subtitles), len(parsed.Skipped))

	jobID := hash(cfg.Input)
	baseCache := s.Paths.Cache
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", jobID)
	log.Info("preparing workspace")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return res, err
	}
	log.Infof("cache: %s", cacheDir)

	outDir := s.Paths.Out
	if outDir == "" {
		outDir = "out"
	}
	res.RunDir = buildRunOutDir(outDir, cfg.Input, time.Now().UTC())
	if err := os.MkdirAll(res.RunDir, 0o755); err != nil {
		return res, err
	}
	log.Infof("output run dir: %s", res.RunDir)

	if deps.Video == nil {
		deps.Video = newVideoTool(s, cacheDir, log)
	}

	var doc map[string]any
	switch mode {
	case ModeLocal:
		res.Source = SourceLocal
		doc, err = loadLocal(cfg.HighlightsFile, cfg.LegacySegments, log)
		if err != nil {
			return res, err
		}
	default:
		if len(parsed.Subtitles) == 0 {
			return res, errors.New("no subtitles parsed; nothing to send to the model")
		}
		closeDeps, err := fillModelDeps(ctx, cfg, &deps)
		if err != nil {
			return res, err
		}
		defer closeDeps()
		doc, err = selectHighlights(ctx, cfg, deps, subtitles.ToTranscript(parsed.Subtitles), cacheDir, &res, log)
		if err != nil {
			return res, err
		}
	}

	uc := usecase.New(usecase.Deps{Video: deps.Video, Log: log})
	res.Output = filepath.Join(res.RunDir, OutputName)
	res.Timestamps = filepath.Join(res.RunDir, TimestampsName)
	asm, err := uc.Assemble(ctx, usecase.AssembleInput{
		SourcePath:     cfg.Input,
		Document:       doc,
		OutputPath:     res.Output,
		Subtitles:      parsed.Subtitles,
		TimestampsPath: res.Timestamps,
		Render: usecase.RenderOptions{
			Canvas:    types.Size{W: s.Render.Width, H: s.Render.Height},
			FontFile:  s.Render.FontFile,
			BlurSigma: s.Render.BlurSigma,
		},
		Fade: s.Render.Fade,
	})
	res.Assemble = asm
	if err != nil {
		return res, err
	}

	if deps.Publishers == nil {
		deps.Publishers, err = newPublishers(ctx, s)
		if err != nil {
			return res, err
		}
	}
	res.Published = publish(ctx, deps.Publishers, publishItem(res, asm.Set), log)

	res.Manifest = buildManifest(cfg, res)
	res.ManifestPath = filepath.Join(res.RunDir, ManifestName)
	if err := writeManifest(res.ManifestPath, res.Manifest); err != nil {
		return res, err
	}
	log.Infof("manifest written (%d segments): %s", len(res.Manifest.Segments), res.ManifestPath)
	return res, nil
}

func loadLocal(path string, legacy bool, log logrus.FieldLogger) (map[string]any, error) {
	log.Infof("loading highlights from %s", path)
	doc, err := highlights.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if legacy {
		var adapted bool
		if doc, adapted = highlights.AdaptLegacy(doc); adapted {
			log.Info("adapted legacy segments document")
		}
	}
	return doc, nil
}

func selectHighlights(
	ctx context.Context,
	cfg Config,
	deps Deps,
	transcript string,
	cacheDir string,
	res *Result,
	log logrus.FieldLogger,
) (map[string]any, error) {
	s := cfg.Settings
	key := cacheKey(transcript, s.LLM.MinDuration, s.LLM.MaxDuration, s.LLM.Provider, s.LLM.Model)
	useCache := deps.Cache != nil && !cfg.NoCache
	if useCache {
		set, ok, err := deps.Cache.Get(ctx, key)
		switch {
		case err != nil:
			log.WithError(err).Warn("highlight cache lookup failed")
		case ok:
			log.Infof("using cached highlights (%d entries)", len(set.VideoSummary))
			res.Source = SourceCache
			res.Accepted = true
			return highlights.ToDocument(set)
		}
	}

	res.Source = SourceLLM
	sel, err := highlights.Select(ctx, deps.Model, transcript, highlights.Options{
		MinDuration: s.LLM.MinDuration,
		MaxDuration: s.LLM.MaxDuration,
		MaxRetries:  s.LLM.MaxRetries,
		DumpDir:     cacheDir,
		Log:         log,
	})
	res.Attempts, res.Accepted = sel.Attempts, sel.Accepted
	if err != nil {
		return nil, err
	}
	if !sel.Accepted {
		log.Warnf("no in-range highlight set after %d attempts; using the last reply", sel.Attempts)
		return sel.Document, nil
	}
	if useCache {
		if set, err := highlights.Decode(sel.Document); err == nil {
			if err := deps.Cache.Put(ctx, key, set, s.Cache.TTL); err != nil {
				log.WithError(err).Warn("highlight cache store failed")
			}
		}
	}
	return sel.Document, nil
}

func publishItem(res Result, set types.HighlightSet) types.PublishItem {
	item := types.PublishItem{VideoPath: res.Output, TimestampsPath: res.Timestamps}
	var lines []string
	seen := map[string]bool{}
	for _, seg := range set.VideoSummary {
		if item.Title == "" {
			item.Title = seg.Description
		}
		lines = append(lines, seg.Description)
		if seg.Category != "" && !seen[seg.Category] {
			seen[seg.Category] = true
			item.Tags = append(item.Tags, seg.Category)
		}
	}
	item.Description = strings.Join(lines, "\n")
	return item
}

// publish uploads to every target. Failures are logged; the local output
// stays valid either way.
func publish(ctx context.Context, pubs []ports.Publisher, item types.PublishItem, log logrus.FieldLogger) []string {
	var out []string
	for _, p := range pubs {
		plog := log.WithField("publisher", p.Name())
		loc, err := p.Publish(ctx, item)
		if err != nil {
			plog.WithError(err).Warn("publish failed")
			continue
		}
		plog.Infof("published: %s", loc)
		out = append(out, loc)
	}
	return out
}

func normalizeMode(m string) string {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "", ModeLLM, "gpt":
		return ModeLLM
	case ModeLocal:
		return ModeLocal
	default:
		return m
	}
}

// cacheKey identifies a selection by everything that shapes the reply.
func cacheKey(transcript string, min, max float64, provider, model string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%g|%g|%s|%s", transcript, min, max, provider, model)))
	return hex.EncodeToString(sum[:])
}

func buildRunOutDir(outRoot, inputMP4 string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputMP4), filepath.Ext(inputMP4))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputMP4, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
