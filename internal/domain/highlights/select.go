package highlights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/hlshorts/internal/logging"
	"github.com/forPelevin/hlshorts/internal/ports"
	"github.com/forPelevin/hlshorts/internal/types"
)

// Options tune a selection. Zero values take the defaults below.
type Options struct {
	MinDuration float64
	MaxDuration float64
	MaxRetries  int
	// DumpDir receives last_llm_response_attempt_<n>.json for every reply.
	// Empty disables dumps.
	DumpDir string
	Log     logrus.FieldLogger
}

const (
	DefaultMinDuration = 60
	DefaultMaxDuration = 90
	DefaultMaxRetries  = 3
)

func (o Options) withDefaults() Options {
	if o.MinDuration <= 0 && o.MaxDuration <= 0 {
		o.MinDuration, o.MaxDuration = DefaultMinDuration, DefaultMaxDuration
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	return o
}

// Selection is the outcome of Select. When Accepted is false, Document is
// whatever the final attempt produced and may be nil or invalid; callers
// must run it through Decode before use.
type Selection struct {
	Document map[string]any
	Raw      string
	Total    float64
	Attempts int
	Accepted bool
	// Feedback holds every corrective message sent, in order.
	Feedback     []string
	Conversation []types.Message
}

// Select asks the model for a highlight set whose total duration falls in
// [MinDuration, MaxDuration]. Each failed attempt appends the model's reply
// and a corrective user turn before retrying. The first in-range reply is
// accepted. An error is returned only when the model call itself fails.
func Select(ctx context.Context, model ports.ChatModel, transcript string, opts Options) (Selection, error) {
	if model == nil {
		return Selection{}, errors.New("select highlights: chat model is nil")
	}
	opts = opts.withDefaults()
	log := opts.Log.WithField("component", "selector")

	sel := Selection{Conversation: InitialConversation(transcript, opts.MinDuration, opts.MaxDuration)}
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		alog := log.WithField("attempt", attempt)
		alog.Info("requesting highlights")

		history := append([]types.Message(nil), sel.Conversation...)
		raw, err := model.Complete(ctx, history)
		if err != nil {
			return sel, fmt.Errorf("select highlights: attempt %d: %w", attempt, err)
		}
		sel.Attempts = attempt
		sel.Raw = raw
		dumpReply(alog, opts.DumpDir, attempt, raw)

		doc, salvaged := ParseReply(raw)
		if salvaged {
			alog.Warn("reply was not strict JSON; salvaged the enclosed object")
		}
		sel.Document = doc

		var feedback string
		total, ok := summaryTotal(doc)
		if !ok {
			feedback = invalidStructureFeedback
			alog.Warn("reply is missing the video_summary structure")
		} else {
			sel.Total = total
			if total >= opts.MinDuration && total <= opts.MaxDuration {
				sel.Accepted = true
				alog.WithField("total_sec", total).Info("highlights accepted")
				if odd := UncommonCategories(doc); len(odd) > 0 {
					alog.WithField("categories", odd).Debug("reply uses categories outside the prompt's list")
				}
				return sel, nil
			}
			feedback = OutOfRangeFeedback(total, opts.MinDuration, opts.MaxDuration)
			alog.WithField("total_sec", total).Warn("highlight duration out of range")
		}

		sel.Feedback = append(sel.Feedback, feedback)
		sel.Conversation = append(sel.Conversation,
			types.Message{Role: types.RoleAssistant, Content: raw},
			types.Message{Role: types.RoleUser, Content: feedback},
		)
	}
	log.WithField("attempts", sel.Attempts).Warn("retries exhausted; returning last reply")
	return sel, nil
}

// DumpFileName is the raw reply artifact name for an attempt.
func DumpFileName(attempt int) string {
	return fmt.Sprintf("last_llm_response_attempt_%d.json", attempt)
}

func dumpReply(log logrus.FieldLogger, dir string, attempt int, raw string) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.WithError(err).Warn("dump reply")
		return
	}
	if err := os.WriteFile(filepath.Join(dir, DumpFileName(attempt)), []byte(raw), 0o644); err != nil {
		log.WithError(err).Warn("dump reply")
	}
}
