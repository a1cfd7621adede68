package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/blooddonorconnect/backend"

// Metrics holds all application metrics
type Metrics struct {
	RequestCount         metric.Int64Counter
	RequestDuration      metric.Float64Histogram
	CacheHitCount        metric.Int64Counter
	CacheMissCount       metric.Int64Counter
	DonorRegistrations   metric.Int64Counter
	NearbySearches       metric.Int64Counter
	EmergencyRequests    metric.Int64Counter
	EmergencyEscalations metric.Int64Counter
	SnapshotSaveDuration metric.Float64Histogram
	SnapshotSaveFailures metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing and metrics with OTLP gRPC
// exporters and starts Go runtime instrumentation.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(10 * time.Second)); err != nil {
		_ = tracerProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(tracerProvider.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}
	return shutdown, nil
}

// InitMetrics initializes application metrics on the global meter provider
func InitMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(instrumentationName))
}

// NewMetrics creates the application instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.RequestCount, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.CacheHitCount, err = meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	); err != nil {
		return nil, err
	}
	if m.CacheMissCount, err = meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	); err != nil {
		return nil, err
	}
	if m.DonorRegistrations, err = meter.Int64Counter(
		"donor.registrations",
		metric.WithDescription("Number of registered donors"),
	); err != nil {
		return nil, err
	}
	if m.NearbySearches, err = meter.Int64Counter(
		"donor.nearby.searches",
		metric.WithDescription("Number of nearby donor searches"),
	); err != nil {
		return nil, err
	}
	if m.EmergencyRequests, err = meter.Int64Counter(
		"emergency.requests",
		metric.WithDescription("Number of emergency requests recorded"),
	); err != nil {
		return nil, err
	}
	if m.EmergencyEscalations, err = meter.Int64Counter(
		"emergency.escalations",
		metric.WithDescription("Emergency requests with no donor in range"),
	); err != nil {
		return nil, err
	}
	if m.SnapshotSaveDuration, err = meter.Float64Histogram(
		"snapshot.save.duration",
		metric.WithDescription("Snapshot save duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.SnapshotSaveFailures, err = meter.Int64Counter(
		"snapshot.save.failures",
		metric.WithDescription("Snapshot saves that failed after retries"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordRequestMetric records an HTTP request
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	)
	metrics.RequestCount.Add(ctx, 1, attrs)
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// RecordDonorRegistration counts a successful registration
func RecordDonorRegistration(ctx context.Context, metrics *Metrics, bloodType, region string) {
	if metrics == nil {
		return
	}
	metrics.DonorRegistrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("donor.blood_type", bloodType),
		attribute.String("donor.region", region),
	))
}

// RecordNearbySearch counts a nearby donor search and whether it found anyone
func RecordNearbySearch(ctx context.Context, metrics *Metrics, bloodType string, found bool) {
	if metrics == nil {
		return
	}
	metrics.NearbySearches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("donor.blood_type", bloodType),
		attribute.Bool("donor.found", found),
	))
}

// RecordEmergencyRequest counts an emergency request and, when no donor was
// in range, an escalation
func RecordEmergencyRequest(ctx context.Context, metrics *Metrics, bloodType, region string, escalated bool) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("emergency.blood_type", bloodType),
		attribute.String("emergency.region", region),
	)
	metrics.EmergencyRequests.Add(ctx, 1, attrs)
	if escalated {
		metrics.EmergencyEscalations.Add(ctx, 1, attrs)
	}
}

// RecordSnapshotSave records a snapshot save attempt
func RecordSnapshotSave(ctx context.Context, metrics *Metrics, backend string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("snapshot.backend", backend))
	metrics.SnapshotSaveDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		metrics.SnapshotSaveFailures.Add(ctx, 1, attrs)
	}
}
