package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"

	"github.com/forPelevin/hlshorts/internal/types"
)

const lockRetry = 50 * time.Millisecond

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Cache keeps one JSON file per key under dir. Reads and writes of a key are
// serialized across processes with a lock file next to the entry.
type Cache struct {
	dir string
	now func() time.Time
}

func New(dir string) *Cache {
	return &Cache{dir: dir, now: time.Now}
}

type entry struct {
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
	Set       types.HighlightSet `json:"set"`
}

func (c *Cache) Get(ctx context.Context, key string) (types.HighlightSet, bool, error) {
	unlock, err := c.lock(ctx, key)
	if err != nil {
		return types.HighlightSet{}, false, err
	}
	defer unlock()

	b, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return types.HighlightSet{}, false, nil
	}
	if err != nil {
		return types.HighlightSet{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		// corrupt entries count as misses and get overwritten on Put
		return types.HighlightSet{}, false, nil
	}
	if e.ExpiresAt != nil && !c.now().Before(*e.ExpiresAt) {
		return types.HighlightSet{}, false, nil
	}
	return e.Set, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, set types.HighlightSet, ttl time.Duration) error {
	unlock, err := c.lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	now := c.now().UTC()
	e := entry{CreatedAt: now, Set: set}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (c *Cache) lock(ctx context.Context, key string) (func(), error) {
	if !validKey.MatchString(key) {
		return nil, fmt.Errorf("invalid cache key %q", key)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	fl := flock.New(filepath.Join(c.dir, key+".lock"))
	ok, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire cache lock: %s is busy", key)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
