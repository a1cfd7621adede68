package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
)

// LoggingMiddleware writes one access log line per request, at warn for
// client errors and error for server errors.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger := observability.LoggerFromContext(r.Context())
		event := logger.Info()
		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			event = logger.Error()
		case rw.statusCode >= http.StatusBadRequest:
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", r.Pattern).
			Int("status", rw.statusCode).
			Int("bytes", rw.bytes).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}
