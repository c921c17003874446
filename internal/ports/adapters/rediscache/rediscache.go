package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forPelevin/hlshorts/internal/types"
)

const defaultPrefix = "hlshorts:highlights:"

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Cache struct {
	rdb    *redis.Client
	prefix string
}

// New connects and pings the server so misconfiguration fails early.
func New(ctx context.Context, o Options) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", o.Addr, err)
	}
	return newWithClient(rdb, o.Prefix), nil
}

func newWithClient(rdb *redis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) (types.HighlightSet, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.HighlightSet{}, false, nil
	}
	if err != nil {
		return types.HighlightSet{}, false, fmt.Errorf("redis get: %w", err)
	}
	var set types.HighlightSet
	if err := json.Unmarshal(b, &set); err != nil {
		return types.HighlightSet{}, false, nil
	}
	return set, true, nil
}

// Put stores set under key. ttl <= 0 keeps the entry until evicted.
func (c *Cache) Put(ctx context.Context, key string, set types.HighlightSet, ttl time.Duration) error {
	b, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Cache) Close() error { return c.rdb.Close() }
