package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/redis"
)

const responseKeyPrefix = "bdc:http:"

// RedisResponseCache implements providers.ResponseCache. Keys live under
// a namespace, normally the facility directory version, so a server
// started with a different directory never reads another one's listings.
type RedisResponseCache struct {
	client    *redisclient.Client
	namespace string
}

var _ providers.ResponseCache = (*RedisResponseCache)(nil)

// NewRedisResponseCache creates a response cache scoped to namespace.
func NewRedisResponseCache(client *redisclient.Client, namespace string) *RedisResponseCache {
	return &RedisResponseCache{client: client, namespace: namespace}
}

func (c *RedisResponseCache) key(k string) string {
	return responseKeyPrefix + c.namespace + ":" + k
}

// Get returns the cached body or providers.ErrCacheMiss.
func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := c.client.Client().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, providers.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cached response: %w", err)
	}
	return body, nil
}

// Set stores body for ttl. A non-positive ttl is refused so nothing is
// cached forever.
func (c *RedisResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	if err := c.client.Client().Set(ctx, c.key(key), body, ttl).Err(); err != nil {
		return fmt.Errorf("write cached response: %w", err)
	}
	return nil
}
