// Package config loads hlshorts settings. Sources are layered lowest first:
// built-in defaults, an optional config file (yaml or toml), HLSHORTS_*
// environment variables and finally command-line flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. HLSHORTS_LLM_MODEL.
const EnvPrefix = "HLSHORTS"

type Config struct {
	LLM     LLM     `mapstructure:"llm"`
	Render  Render  `mapstructure:"render"`
	Paths   Paths   `mapstructure:"paths"`
	FFmpeg  FFmpeg  `mapstructure:"ffmpeg"`
	Cache   Cache   `mapstructure:"cache"`
	Publish Publish `mapstructure:"publish"`
	Log     Log     `mapstructure:"log"`
}

// LLM configures the chat model used for highlight selection.
type LLM struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	AllowedHosts []string      `mapstructure:"allowed_hosts"`
	MaxRetries   int           `mapstructure:"max_retries"`
	MinDuration  float64       `mapstructure:"min_duration"`
	MaxDuration  float64       `mapstructure:"max_duration"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Render configures the output canvas and encoder.
type Render struct {
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	FPS          int     `mapstructure:"fps"`
	FontFile     string  `mapstructure:"font_file"`
	BlurSigma    float64 `mapstructure:"blur_sigma"`
	VideoBitrate string  `mapstructure:"video_bitrate"`
	Preset       string  `mapstructure:"preset"`
	VideoCodec   string  `mapstructure:"video_codec"`
	AudioCodec   string  `mapstructure:"audio_codec"`
	// Fade is the fade in/out of the final video in seconds.
	Fade float64 `mapstructure:"fade"`
}

type Paths struct {
	Out   string `mapstructure:"out"`
	Cache string `mapstructure:"cache"`
}

type FFmpeg struct {
	FFmpeg  string `mapstructure:"ffmpeg"`
	FFprobe string `mapstructure:"ffprobe"`
}

// Cache configures where accepted highlight sets are remembered.
type Cache struct {
	Backend       string        `mapstructure:"backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// Publish configures optional upload targets. Empty values disable them.
type Publish struct {
	S3Bucket           string `mapstructure:"s3_bucket"`
	S3Prefix           string `mapstructure:"s3_prefix"`
	S3Region           string `mapstructure:"s3_region"`
	YouTubeCredentials string `mapstructure:"youtube_credentials"`
	YouTubePrivacy     string `mapstructure:"youtube_privacy"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLM{
			Provider:    ProviderOpenAI,
			MaxRetries:  defaultMaxRetries,
			MinDuration: defaultMinDuration,
			MaxDuration: defaultMaxDuration,
			Timeout:     defaultLLMTimeout,
		},
		Render: Render{
			Width:        defaultWidth,
			Height:       defaultHeight,
			FPS:          defaultFPS,
			BlurSigma:    defaultBlurSigma,
			VideoBitrate: defaultVideoBitrate,
			Preset:       defaultPreset,
			VideoCodec:   defaultVideoCodec,
			AudioCodec:   defaultAudioCodec,
			Fade:         defaultFade,
		},
		Paths:   Paths{Out: defaultOutDir, Cache: defaultCacheDir},
		FFmpeg:  FFmpeg{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Cache:   Cache{Backend: CacheFile, TTL: defaultCacheTTL},
		Publish: Publish{YouTubePrivacy: defaultYouTubePrivacy},
		Log:     Log{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}

// NewViper returns a viper instance preloaded with defaults and environment
// bindings. The CLI binds its flags on top before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file when given, otherwise an hlshorts.{yaml,toml} in the
// working directory if one exists, and decodes the merged settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("hlshorts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.normalize()
	c.applyProviderKey(os.Getenv)
	return c, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.allowed_hosts", d.LLM.AllowedHosts)
	v.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	v.SetDefault("llm.min_duration", d.LLM.MinDuration)
	v.SetDefault("llm.max_duration", d.LLM.MaxDuration)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.height", d.Render.Height)
	v.SetDefault("render.fps", d.Render.FPS)
	v.SetDefault("render.font_file", d.Render.FontFile)
	v.SetDefault("render.blur_sigma", d.Render.BlurSigma)
	v.SetDefault("render.video_bitrate", d.Render.VideoBitrate)
	v.SetDefault("render.preset", d.Render.Preset)
	v.SetDefault("render.video_codec", d.Render.VideoCodec)
	v.SetDefault("render.audio_codec", d.Render.AudioCodec)
	v.SetDefault("render.fade", d.Render.Fade)

	v.SetDefault("paths.out", d.Paths.Out)
	v.SetDefault("paths.cache", d.Paths.Cache)
	v.SetDefault("ffmpeg.ffmpeg", d.FFmpeg.FFmpeg)
	v.SetDefault("ffmpeg.ffprobe", d.FFmpeg.FFprobe)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", d.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("publish.s3_bucket", d.Publish.S3Bucket)
	v.SetDefault("publish.s3_prefix", d.Publish.S3Prefix)
	v.SetDefault("publish.s3_region", d.Publish.S3Region)
	v.SetDefault("publish.youtube_credentials", d.Publish.YouTubeCredentials)
	v.SetDefault("publish.youtube_privacy", d.Publish.YouTubePrivacy)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Publish.YouTubePrivacy = strings.ToLower(strings.TrimSpace(c.Publish.YouTubePrivacy))
	var hosts []string
	for _, e := range c.LLM.AllowedHosts {
		if h := hostName(e); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.LLM.AllowedHosts = hosts
}

// applyProviderKey falls back to the provider's conventional API key
// variable when llm.api_key is not set.
func (c *Config) applyProviderKey(getenv func(string) string) {
	if c.LLM.APIKey != "" {
		return
	}
	for _, name := range providerKeyEnv[c.LLM.Provider] {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			c.LLM.APIKey = v
			return
		}
	}
}

var providerKeyEnv = map[string][]string{
	ProviderOpenAI:     {"OPENAI_API_KEY"},
	ProviderOpenRouter: {"OPENROUTER_API_KEY"},
	ProviderGemini:     {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// ProviderKeyEnv names the environment variable conventionally holding the
// provider's API key.
func ProviderKeyEnv(provider string) string {
	if names := providerKeyEnv[provider]; len(names) > 0 {
		return names[0]
	}
	return ""
}
