package fetch

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache caches raw provider payloads in Redis with a TTL, so that
// repeated requests within a session don't hit the external API again.
// A nil *ResponseCache is valid and caches nothing.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a cache over the given Redis client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl}
}

// Get returns the cached payload for the key, if present.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	body, err := c.client.Get(ctx, "fetch:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores the payload under the key. Failures are ignored; the cache is
// an optimization, not a source of truth.
func (c *ResponseCache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, "fetch:"+key, payload, c.ttl)
}
