package config

import "time"

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

const (
	defaultMaxRetries     = 3
	defaultMinDuration    = 60
	defaultMaxDuration    = 90
	defaultLLMTimeout     = 90 * time.Second
	defaultWidth          = 1080
	defaultHeight         = 1920
	defaultFPS            = 24
	defaultBlurSigma      = 20
	defaultVideoBitrate   = "1000k"
	defaultPreset         = "ultrafast"
	defaultVideoCodec     = "libx264"
	defaultAudioCodec     = "aac"
	defaultFade           = 0.5
	defaultOutDir         = "out"
	defaultCacheDir       = ".cache"
	defaultCacheTTL       = 7 * 24 * time.Hour
	defaultYouTubePrivacy = "private"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)
