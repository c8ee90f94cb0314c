package instrument

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ErrEndpointRequired is returned when export is enabled without a collector address.
var ErrEndpointRequired = errors.New("instrument: otlp endpoint is required when enabled")

const defaultMetricsInterval = 15 * time.Second

// Instrumentation exposes tracing and metrics providers for dependency injection.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config drives OpenTelemetry initialization.
type Config struct {
	// Enabled turns on OTLP export. Logging to stdout happens either way.
	Enabled bool
	// ServiceName is the service.name resource attribute.
	ServiceName string
	// ServiceVersion is the service.version resource attribute.
	ServiceVersion string
	// Environment is the deployment environment name.
	Environment string
	// OTLPEndpoint is the OTLP gRPC collector address.
	OTLPEndpoint string
	// OTLPSecure controls TLS usage for OTLP exporters.
	OTLPSecure bool
	// TraceSampleRatio is clamped to [0, 1].
	TraceSampleRatio float64
	// MetricsInterval configures the metrics export interval.
	MetricsInterval time.Duration
	// LogLevel is one of debug, info, warn or error.
	LogLevel string
	// MaskFields lists log field names whose values are masked.
	MaskFields []string
	// Output receives the JSON log lines. Nil means os.Stdout.
	Output io.Writer
}

func (c *Config) output() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}

	return c.Output
}

func (c *Config) logOptions(lp *sdklog.LoggerProvider) LogOptions {
	return LogOptions{
		Service:    c.ServiceName,
		Level:      ParseLevel(c.LogLevel),
		Provider:   lp,
		MaskFields: c.MaskFields,
	}
}

func (c *Config) sampleRatio() float64 {
	return min(max(c.TraceSampleRatio, 0), 1)
}

func (c *Config) metricsInterval() time.Duration {
	if c.MetricsInterval <= 0 {
		return defaultMetricsInterval
	}

	return c.MetricsInterval
}

type otelInstrumentation struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
}

// New installs the masking JSON logger as the slog default and returns an
// OTLP-backed instrumentation, or a noop one when export is disabled.
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if !cfg.Enabled {
		InitLogging(cfg.output(), cfg.logOptions(nil))
		return NewNoop(), nil
	}
	if cfg.OTLPEndpoint == "" {
		return nil, ErrEndpointRequired
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("env", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exp, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio()))),
		sdktrace.WithBatcher(exp.trace),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metric, sdkmetric.WithInterval(cfg.metricsInterval()))),
	)

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp.log)),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	InitLogging(cfg.output(), cfg.logOptions(lp))

	return &otelInstrumentation{
		tracerProvider: tp,
		meterProvider:  mp,
		loggerProvider: lp,
	}, nil
}

type exporters struct {
	trace  *otlptrace.Exporter
	metric *otlpmetricgrpc.Exporter
	log    *otlploggrpc.Exporter
}

// newExporters dials the three OTLP exporters. Exporters already created are
// shut down when a later one fails.
func newExporters(ctx context.Context, cfg *Config) (*exporters, error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if !cfg.OTLPSecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, errors.Join(err, traceExporter.Shutdown(ctx))
	}

	logExporter, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return nil, errors.Join(err, traceExporter.Shutdown(ctx), metricExporter.Shutdown(ctx))
	}

	return &exporters{trace: traceExporter, metric: metricExporter, log: logExporter}, nil
}

// Tracer returns a tracer for the given name.
func (o *otelInstrumentation) Tracer(name string) trace.Tracer {
	return o.tracerProvider.Tracer(name)
}

// Meter returns a meter for the given name.
func (o *otelInstrumentation) Meter(name string) metric.Meter {
	return o.meterProvider.Meter(name)
}

// Shutdown flushes and stops tracing, metrics, and logs.
func (o *otelInstrumentation) Shutdown(ctx context.Context) error {
	return errors.Join(
		o.tracerProvider.Shutdown(ctx),
		o.meterProvider.Shutdown(ctx),
		o.loggerProvider.Shutdown(ctx),
	)
}

// NewNoop returns a no-op implementation suitable for unit tests.
func NewNoop() Instrumentation {
	return &noopInstrumentation{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

type noopInstrumentation struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func (n *noopInstrumentation) Tracer(name string) trace.Tracer {
	return n.tracerProvider.Tracer(name)
}

func (n *noopInstrumentation) Meter(name string) metric.Meter {
	return n.meterProvider.Meter(name)
}

func (n *noopInstrumentation) Shutdown(context.Context) error {
	return nil
}
