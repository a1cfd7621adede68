package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type loggerKey struct{}

// InitLogger sets the global zerolog logger. level is a zerolog level
// name; unknown or empty values fall back to info.
func InitLogger(serviceName, serviceVersion, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = newLogger(os.Stdout, serviceName, serviceVersion, env)
}

// newLogger writes console output in development and JSON elsewhere.
func newLogger(out io.Writer, serviceName, serviceVersion, env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Str("version", serviceVersion).
		Str("env", env).
		Logger()
}

// WithRequestID returns ctx carrying a logger tagged with requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := log.With().Str("request_id", requestID).Logger()
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the request logger when ctx has one, or the
// global logger, with the active span's ids attached.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger)
	if !ok {
		logger = log.Logger
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &logger
}
