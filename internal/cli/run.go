package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forPelevin/hlshorts/internal/config"
	"github.com/forPelevin/hlshorts/internal/logging"
	"github.com/forPelevin/hlshorts/internal/pipeline"
)

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	flags := cmd.Flags()
	cfgFile, _ := flags.GetString("config")
	mode, _ := flags.GetString("mode")
	hlFile, _ := flags.GetString("highlights")
	legacy, _ := flags.GetBool("legacy-segments")
	noCache, _ := flags.GetBool("no-cache")

	settings, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	log, closeLog, err := logging.New(logging.Options{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		File:   settings.Log.File,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer closeLog()

	absIn, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	subs := subtitlesPath(absIn)
	if len(args) > 1 {
		if subs, err = filepath.Abs(args[1]); err != nil {
			return err
		}
	}

	cfg := pipeline.Config{
		Input:          absIn,
		Subtitles:      subs,
		Mode:           mode,
		HighlightsFile: hlFile,
		LegacySegments: legacy,
		NoCache:        noCache,
		Settings:       settings,
		Log:            log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg)
	if len(res.Assemble.Segments) > 0 || len(res.Assemble.Dropped) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "output: %s\n", res.Output)
	return nil
}

// subtitlesPath guesses the subtitles next to the video: same name, .srt.
func subtitlesPath(video string) string {
	return strings.TrimSuffix(video, filepath.Ext(video)) + ".srt"
}
