package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	// ExporterNone keeps the SDK providers but ships nothing. The seed
	// command and tests use it.
	ExporterNone = "none"
)

// Config holds OpenTelemetry provider configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string // "development" or "production"
	Exporter       string // ExporterStdout, ExporterOTLP or ExporterNone
	Insecure       bool   // plain HTTP for OTLP
	// SampleRatio is the fraction of root traces kept, in [0, 1].
	SampleRatio float64
}

// ConfigFromEnv reads the OTEL_* variables, falling back to a local stdout
// setup that samples everything.
func ConfigFromEnv() Config {
	env := envOrDefault("OTEL_ENVIRONMENT", "development")

	ratio, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64)
	if err != nil || ratio < 0 || ratio > 1 {
		ratio = 1
	}

	return Config{
		ServiceName:    envOrDefault("OTEL_SERVICE_NAME", "coursereg"),
		ServiceVersion: envOrDefault("OTEL_SERVICE_VERSION", "0.1.0"),
		Environment:    env,
		Exporter:       envOrDefault("OTEL_EXPORTER", ExporterStdout),
		Insecure:       env == "development",
		SampleRatio:    ratio,
	}
}

// Providers holds the installed providers. Shutdown flushes pending
// telemetry and must run before the process exits.
type Providers struct {
	Shutdown func(ctx context.Context) error
}

// Setup builds the tracer and meter providers for cfg and installs them as
// the global providers, together with W3C trace-context propagation.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	traceOpts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	meterOpts := []metric.Option{metric.WithResource(res)}

	switch cfg.Exporter {
	case ExporterNone:
	case ExporterStdout, ExporterOTLP:
		spans, err := spanExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating span exporter: %w", err)
		}
		metrics, err := metricExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		traceOpts = append(traceOpts, trace.WithBatcher(spans))
		meterOpts = append(meterOpts, metric.WithReader(metric.NewPeriodicReader(metrics)))
	default:
		return nil, fmt.Errorf("unsupported exporter %q (use %q, %q or %q)",
			cfg.Exporter, ExporterStdout, ExporterOTLP, ExporterNone)
	}

	tp := trace.NewTracerProvider(traceOpts...)
	mp := metric.NewMeterProvider(meterOpts...)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Providers{
		Shutdown: func(ctx context.Context) error {
			return errors.Join(
				wrapShutdown("tracer", tp.Shutdown(ctx)),
				wrapShutdown("meter", mp.Shutdown(ctx)),
			)
		},
	}, nil
}

func spanExporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	if cfg.Exporter == ExporterStdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	var opts []otlptracehttp.Option
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func metricExporter(ctx context.Context, cfg Config) (metric.Exporter, error) {
	if cfg.Exporter == ExporterStdout {
		return stdoutmetric.New()
	}
	var opts []otlpmetrichttp.Option
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func wrapShutdown(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s shutdown: %w", name, err)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
