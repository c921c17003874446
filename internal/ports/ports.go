package ports

import (
	"context"
	"time"

	"github.com/forPelevin/hlshorts/internal/types"
)

// Source is an opened input video. Close releases it.
type Source interface {
	Info() types.MediaInfo
	Close() error
}

// Clip is a rendered segment kept on disk until Close.
type Clip interface {
	Path() string
	Duration() float64
	Close() error
}

type VideoTool interface {
	Open(ctx context.Context, path string) (Source, error)
	// Compose renders a segment with background, foreground and captions.
	Compose(ctx context.Context, src Source, plan types.CompositePlan) (Clip, error)
	// Stretch renders a segment scaled to the canvas with no other layers.
	Stretch(ctx context.Context, src Source, start, end float64, canvas types.Size) (Clip, error)
	// Concat joins clips in order into outPath. fade > 0 adds a fade-in and
	// fade-out of that many seconds to the whole result.
	Concat(ctx context.Context, clips []Clip, outPath string, fade float64) error
}

// ChatModel completes a conversation and returns the assistant reply text.
type ChatModel interface {
	Complete(ctx context.Context, msgs []types.Message) (string, error)
}

// HighlightCache stores accepted highlight sets by key. Get reports false on a miss.
type HighlightCache interface {
	Get(ctx context.Context, key string) (types.HighlightSet, bool, error)
	Put(ctx context.Context, key string, set types.HighlightSet, ttl time.Duration) error
}

// Publisher uploads a finished short and returns where it ended up.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, item types.PublishItem) (string, error)
}
