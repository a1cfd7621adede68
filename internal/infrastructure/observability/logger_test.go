package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLogger_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "blood-donor-connect", "1.2.0", "production")

	logger.Info().Str("region", "pune").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "blood-donor-connect", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "1.2.0", entry["version"])
	assert.Equal(t, "pune", entry["region"])
	assert.Contains(t, entry, "caller")
}

func TestInitLogger_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	InitLogger("svc", "1.0.0", "production", "warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	InitLogger("svc", "1.0.0", "production", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestLoggerFromContext_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	LoggerFromContext(ctx).Info().Msg("traced")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestLoggerFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	ctx := WithRequestID(context.Background(), "req-42")
	LoggerFromContext(ctx).Info().Msg("tagged")
	LoggerFromContext(context.Background()).Info().Msg("untagged")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var tagged, untagged map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &tagged))
	require.NoError(t, json.Unmarshal(lines[1], &untagged))
	assert.Equal(t, "req-42", tagged["request_id"])
	assert.NotContains(t, untagged, "request_id")
}
