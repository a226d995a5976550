package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "forecast:"
	DefaultCacheTTL = time.Hour
)

// Cache stores encoded forecast responses in redis. Every failure is logged and treated as a miss
// so a broken cache never fails a request. A nil *Cache is a disabled cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// CacheKey identifies a forecast request by its file content, its form fields and the fingerprint
// of the reporter options
func CacheKey(file []byte, dateCol, valueCol string, horizon int, fingerprint string) string {
	h := sha256.New()
	h.Write(file)
	for _, part := range []string{dateCol, valueCol, strconv.Itoa(horizon), fingerprint} {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("unable to read cached response", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, b []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.Warn("unable to cache response", "key", key, "error", err)
	}
}

// Status reports the cache health for the health endpoint
func (c *Cache) Status(ctx context.Context) string {
	if c == nil {
		return "disabled"
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return "unavailable"
	}
	return "ok"
}
