package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds caller supplied ids before they reach the logs.
const maxRequestIDLen = 64

// ObservabilityMiddleware tags each request with an id, traces it and
// records the request metrics under the matched route pattern.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLen {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()
			ctx = observability.WithRequestID(ctx, requestID)
			r = r.WithContext(ctx)

			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			// The mux sets Pattern on the request it receives, so read it after serving.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			span.SetName(route)
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.request_id", requestID),
				attribute.Int("http.status_code", rec.statusCode),
			)
			if rec.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.statusCode))
			}
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.statusCode, duration)
		})
	}
}

// statusRecorder remembers the first status and counts body bytes.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
