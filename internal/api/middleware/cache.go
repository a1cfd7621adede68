package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
)

// directoryRoutes serve only facility directory data, which cannot change
// while the process runs.
var directoryRoutes = map[string]bool{
	"/api/facilities":         true,
	"/api/facilities/resolve": true,
	"/api/regions":            true,
}

func isDirectoryRead(r *http.Request) bool {
	return r.Method == http.MethodGet && directoryRoutes[r.URL.Path]
}

// CacheMiddleware caches successful directory responses. Entries only
// expire by TTL; the cache itself is namespaced per directory version.
type CacheMiddleware struct {
	cache   providers.ResponseCache
	metrics *observability.Metrics
	ttl     time.Duration
}

// NewCacheMiddleware creates a new cache middleware. A nil cache or a
// non-positive ttl disables it.
func NewCacheMiddleware(cache providers.ResponseCache, metrics *observability.Metrics, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, metrics: metrics, ttl: ttl}
}

func (m *CacheMiddleware) enabled() bool {
	return m != nil && m.cache != nil && m.ttl > 0
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled() || !isDirectoryRead(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		key := requestFingerprint(r)

		cached, err := m.cache.Get(ctx, key)
		if err == nil {
			observability.RecordCacheHit(ctx, m.metrics, r.URL.Path)
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
		if !errors.Is(err, providers.ErrCacheMiss) {
			logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}

		observability.RecordCacheMiss(ctx, m.metrics, r.URL.Path)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(ctx, key, recorder.body.Bytes(), m.ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
		}
	})
}

// requestFingerprint hashes the path and the sorted query, so parameter
// order does not split entries.
func requestFingerprint(r *http.Request) string {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.Query().Encode()
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// responseRecorder tees the body it passes through.
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.statusCode = statusCode
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
