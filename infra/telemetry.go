package infra

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tnqbao/gau-travel-service/config"
)

const instrumentationName = "github.com/tnqbao/gau-travel-service"

type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	traceExporter  *otlptrace.Exporter
}

func newResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", cfg.Grafana.ServiceName),
		attribute.String("deployment.environment", cfg.Environment.Mode),
		attribute.String("service.namespace", cfg.Environment.Group),
	)
}

// InitTelemetry installs OTLP trace and metric providers as the otel globals.
// Without an endpoint the globals stay no-op.
func InitTelemetry(ctx context.Context, cfg *config.EnvConfig) (*Telemetry, error) {
	if cfg.Grafana.OTLPEndpoint == "" {
		return &Telemetry{}, nil
	}
	res := newResource(cfg)

	traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
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

	metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint))
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		return nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		traceExporter:  traceExporter,
	}, nil
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.TracerProvider == nil {
		return nil
	}
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return t.MeterProvider.Shutdown(ctx)
}

type Metrics struct {
	LikeToggles      metric.Int64Counter
	BlobUploads      metric.Int64Counter
	FilteredImages   metric.Int64Counter
	AccountDeletions metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	likeToggles, err := meter.Int64Counter("travel.like.toggles",
		metric.WithDescription("Like toggles by resulting state"))
	if err != nil {
		return nil, err
	}
	blobUploads, err := meter.Int64Counter("travel.blob.uploads",
		metric.WithDescription("Blobs written to object storage by category"))
	if err != nil {
		return nil, err
	}
	filteredImages, err := meter.Int64Counter("travel.image.filtered",
		metric.WithDescription("Images rejected by content safety"))
	if err != nil {
		return nil, err
	}
	accountDeletions, err := meter.Int64Counter("travel.account.deletions",
		metric.WithDescription("Completed account deletion cascades"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		LikeToggles:      likeToggles,
		BlobUploads:      blobUploads,
		FilteredImages:   filteredImages,
		AccountDeletions: accountDeletions,
	}, nil
}

// DefaultMetrics builds Metrics on the global meter provider.
func DefaultMetrics() *Metrics {
	metrics, err := NewMetrics(otel.Meter(instrumentationName))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}
	return metrics
}
