package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/config"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/retry"
)

const pingTimeout = 2 * time.Second

// Client is the shared Redis connection used by the response cache, the
// emergency event bus and the redis snapshot store.
type Client struct {
	client *redis.Client
	addr   string
}

// NewClient connects to Redis and waits for a PING to succeed, retrying
// with backoff until ctx ends. A zero PoolSize keeps the go-redis default.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	c := &Client{client: redis.NewClient(opts), addr: opts.Addr}

	err := retry.Do(ctx, retry.DefaultConfig(), "Redis", c.Ping, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Str("addr", c.addr).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Redis not reachable yet")
	})
	if err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("connect to Redis at %s: %w", c.addr, err)
	}

	log.Info().Str("addr", c.addr).Int("pool_size", c.client.Options().PoolSize).Msg("Connected to Redis")
	return c, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(client *redis.Client) *Client {
	return &Client{client: client, addr: client.Options().Addr}
}

func (c *Client) Client() *redis.Client {
	return c.client
}

// Name identifies the dependency in health reports.
func (c *Client) Name() string {
	return "redis"
}

// Ping bounds a PING by pingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
