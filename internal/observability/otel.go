package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultCollectionInterval = 15 * time.Second

// Settings is the flattened view of config.ObservabilityConfig used at setup.
type Settings struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusSettings
	OTLP               config.OTLPConfig
	CustomMetrics      config.CustomMetricsConfig
}

// Manager owns the tracer and meter providers and the pipeline metrics.
type Manager struct {
	settings       Settings
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	logger         *errors.Logger
}

// NewManager sets up tracing and metrics. A disabled configuration returns a
// manager whose middleware and metrics are no-ops.
func NewManager(settings Settings, logger *errors.Logger) (*Manager, error) {
	m := &Manager{settings: settings, logger: logger}
	if !settings.Enabled {
		return m, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(settings.ServiceName),
			semconv.ServiceVersion(settings.ServiceVersion),
			attribute.String("service.instance.id", settings.ServiceInstance),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	m.resource = res

	if err := m.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("Observability initialized",
		"service", settings.ServiceName,
		"console", settings.ConsoleOutput,
		"otlp", settings.OTLP.Enabled,
		"prometheus", settings.Prometheus.Enabled)
	return m, nil
}

func (m *Manager) initTracing() error {
	var (
		exporter trace.SpanExporter
		err      error
	)
	switch {
	case m.settings.ConsoleOutput:
		var opts []stdouttrace.Option
		if m.settings.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case m.settings.OTLP.Enabled:
		exporter, err = m.otlpTraceExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(m.resource),
		trace.WithSampler(trace.TraceIDRatioBased(m.settings.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics() error {
	readers, err := m.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(m.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter(m.settings.ServiceName), m.settings.CustomMetrics)
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

func (m *Manager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	interval := m.collectionInterval()

	if m.settings.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if m.settings.OTLP.Enabled {
		exporter, err := m.otlpMetricExporter()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if m.settings.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(m.settings.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, reader)
		srv := StartPrometheusServer(mux, m.settings.Prometheus.Port, m.logger)
		m.shutdownFuncs = append(m.shutdownFuncs, srv.Shutdown)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

func (m *Manager) otlpTraceExporter() (trace.SpanExporter, error) {
	otlp := m.settings.OTLP
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}
	return otlptracehttp.New(context.Background(), opts...)
}

func (m *Manager) otlpMetricExporter() (sdkmetric.Exporter, error) {
	otlp := m.settings.OTLP
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}
	return otlpmetrichttp.New(context.Background(), opts...)
}

func (m *Manager) collectionInterval() time.Duration {
	if m.settings.CollectionInterval > 0 {
		return m.settings.CollectionInterval
	}
	return defaultCollectionInterval
}

// Metrics returns the pipeline metrics, or nil when observability is disabled.
// All Metrics methods accept a nil receiver.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// HTTPMiddleware wraps a handler with otelhttp instrumentation.
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !m.settings.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		m.settings.ServiceName,
		otelhttp.WithTracerProvider(m.tracerProvider),
		otelhttp.WithMeterProvider(m.meterProvider),
	)
}

// Tracer returns a named tracer, or a no-op tracer when disabled.
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if !m.settings.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes exporters and stops the metrics server.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	for _, shutdown := range m.shutdownFuncs {
		errs = append(errs, shutdown(ctx))
	}
	return stderrors.Join(errs...)
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error                          { return nil }
