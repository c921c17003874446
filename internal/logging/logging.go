// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Level is a logrus level name. Unknown values fall back to info.
	Level string
	// Format is "text" or "json".
	Format string
	// File, when set, receives a copy of every entry.
	File string
	// Out defaults to stderr.
	Out io.Writer
}

// New returns a configured logger and a function that closes the log file,
// if any.
func New(o Options) (*logrus.Logger, func() error, error) {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	closer := func() error { return nil }

	colors := isTerminal(out)
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f.Close
		colors = false
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(o.Level))

	switch strings.ToLower(strings.TrimSpace(o.Format)) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   !colors,
			ForceColors:     colors,
		})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		_ = closer()
		return nil, nil, fmt.Errorf("unknown log format %q", o.Format)
	}
	return l, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func parseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
