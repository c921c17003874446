package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/hlshorts/internal/config"
	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/filecache"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/gemini"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/openai"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/openrouter"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/rediscache"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/s3store"
	"github.com/forPelevin/hlshorts/internal/ports/adapters/youtube"
)

func newVideoTool(s config.Config, tempDir string, log logrus.FieldLogger) ports.VideoTool {
	return ffmpeg.New(ffmpeg.Options{
		FFmpegPath:   s.FFmpeg.FFmpeg,
		FFprobePath:  s.FFmpeg.FFprobe,
		TempDir:      tempDir,
		FPS:          s.Render.FPS,
		VideoCodec:   s.Render.VideoCodec,
		AudioCodec:   s.Render.AudioCodec,
		VideoBitrate: s.Render.VideoBitrate,
		Preset:       s.Render.Preset,
		Log:          log,
	})
}

func newChatModel(ctx context.Context, l config.LLM) (ports.ChatModel, error) {
	switch l.Provider {
	case config.ProviderOpenAI, "":
		return openai.New(openai.Options{
			APIKey:     l.APIKey,
			Model:      l.Model,
			BaseURL:    l.BaseURL,
			Timeout:    l.Timeout,
			MaxRetries: 2,
		}), nil
	case config.ProviderOpenRouter:
		return openrouter.New(openrouter.Options{
			APIKey:  l.APIKey,
			Model:   l.Model,
			BaseURL: l.BaseURL,
			Timeout: l.Timeout,
		}), nil
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Options{
			APIKey:  l.APIKey,
			Model:   l.Model,
			BaseURL: l.BaseURL,
			Timeout: l.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", l.Provider)
	}
}

// newCache returns nil when caching is off.
func newCache(ctx context.Context, s config.Config) (ports.HighlightCache, func(), error) {
	switch s.Cache.Backend {
	case config.CacheNone:
		return nil, func() {}, nil
	case config.CacheRedis:
		c, err := rediscache.New(ctx, rediscache.Options{
			Addr:     s.Cache.RedisAddr,
			Password: s.Cache.RedisPassword,
			DB:       s.Cache.RedisDB,
			Prefix:   "hlshorts:highlights:",
		})
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return filecache.New(filepath.Join(s.Paths.Cache, "highlights")), func() {}, nil
	}
}

// fillModelDeps builds the chat model and cache when not supplied. The
// returned function releases what it opened.
func fillModelDeps(ctx context.Context, cfg Config, deps *Deps) (func(), error) {
	closeFn := func() {}
	if deps.Model == nil {
		m, err := newChatModel(ctx, cfg.Settings.LLM)
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		deps.Model = m
	}
	if deps.Cache == nil && !cfg.NoCache {
		c, release, err := newCache(ctx, cfg.Settings)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		deps.Cache = c
		closeFn = release
	}
	return closeFn, nil
}

func newPublishers(ctx context.Context, s config.Config) ([]ports.Publisher, error) {
	pubs := []ports.Publisher{}
	if s.Publish.S3Bucket != "" {
		st, err := s3store.New(ctx, s3store.Options{
			Bucket: s.Publish.S3Bucket,
			Prefix: s.Publish.S3Prefix,
			Region: s.Publish.S3Region,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 publisher: %w", err)
		}
		pubs = append(pubs, st)
	}
	if s.Publish.YouTubeCredentials != "" {
		up, err := youtube.New(ctx, youtube.Options{
			CredentialsFile: s.Publish.YouTubeCredentials,
			Privacy:         s.Publish.YouTubePrivacy,
		})
		if err != nil {
			return nil, fmt.Errorf("youtube publisher: %w", err)
		}
		pubs = append(pubs, up)
	}
	return pubs, nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ChatModel = (*openai.Adapter)(nil)
var _ ports.ChatModel = (*openrouter.Adapter)(nil)
var _ ports.ChatModel = (*gemini.Adapter)(nil)
var _ ports.HighlightCache = (*filecache.Cache)(nil)
var _ ports.HighlightCache = (*rediscache.Cache)(nil)
var _ ports.Publisher = (*s3store.Store)(nil)
var _ ports.Publisher = (*youtube.Uploader)(nil)
