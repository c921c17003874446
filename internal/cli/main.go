package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forPelevin/hlshorts/internal/config"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd(config.NewViper())
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps flags onto config keys so a set flag wins over file and env.
var flagKeys = map[string]string{
	"out":                 "paths.out",
	"cache-dir":           "paths.cache",
	"provider":            "llm.provider",
	"model":               "llm.model",
	"min":                 "llm.min_duration",
	"max":                 "llm.max_duration",
	"retries":             "llm.max_retries",
	"fade":                "render.fade",
	"font":                "render.font_file",
	"cache":               "cache.backend",
	"log-level":           "log.level",
	"log-format":          "log.format",
	"log-file":            "log.file",
	"s3-bucket":           "publish.s3_bucket",
	"youtube-credentials": "publish.youtube_credentials",
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:          "hlshorts <video> [subtitles.srt]",
		Short:        "Turn a long video and its subtitles into a vertical highlight short",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}
	root.SilenceErrors = true

	d := config.Default()
	f := root.Flags()
	f.String("config", "", "Config file (yaml or toml); defaults to ./hlshorts.yaml if present")
	f.String("mode", "llm", "Highlight source: llm or local")
	f.String("highlights", "", "Highlight document for local mode (json or yaml)")
	f.Bool("legacy-segments", false, "Accept a bare {\"segments\": [...]} highlight document")
	f.Bool("no-cache", false, "Ignore cached highlight sets")

	f.String("out", d.Paths.Out, "Output directory")
	f.String("cache-dir", d.Paths.Cache, "Directory for run artifacts and the file cache")
	f.String("provider", d.LLM.Provider, "LLM provider: openai, openrouter or gemini")
	f.String("model", d.LLM.Model, "LLM model name (provider default when empty)")
	f.Float64("min", d.LLM.MinDuration, "Minimum total highlight duration in seconds")
	f.Float64("max", d.LLM.MaxDuration, "Maximum total highlight duration in seconds")
	f.Int("retries", d.LLM.MaxRetries, "Maximum selection attempts")
	f.Float64("fade", d.Render.Fade, "Fade in/out of the final video in seconds (0 disables)")
	f.String("font", d.Render.FontFile, "Caption font file")
	f.String("cache", d.Cache.Backend, "Highlight cache backend: file, redis or none")
	f.String("log-level", d.Log.Level, "Log level")
	f.String("log-format", d.Log.Format, "Log format: text or json")
	f.String("log-file", d.Log.File, "Also write logs to this file")
	f.String("s3-bucket", d.Publish.S3Bucket, "Upload the result to this S3 bucket")
	f.String("youtube-credentials", d.Publish.YouTubeCredentials, "Service account key for YouTube upload")

	// Hidden tuning flags (internal)
	_ = f.MarkHidden("cache-dir")
	_ = f.MarkHidden("retries")

	for name, key := range flagKeys {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
	return root
}
