package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache stores rendered API response bodies keyed by a request
// fingerprint. Entries only leave the cache by expiring.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}
