package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"resumebuilder/internal/config"
	appErrors "resumebuilder/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func allMetricsOn() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		AIOperations:   config.AIOperationsMetricsConfig{Enabled: true, TrackDuration: true, TrackTokenUsage: true},
		Pipeline:       config.PipelineMetricsConfig{Enabled: true, TrackStages: true, TrackScores: true, TrackFallbacks: true},
		Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true},
	}
}

func newTestMetrics(t *testing.T, settings config.CustomMetricsConfig) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), settings)
	require.NoError(t, err)
	return m, reader
}

// counterTotal sums all data points of an Int64 counter.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestRecordAIOperation(t *testing.T) {
	m, reader := newTestMetrics(t, allMetricsOn())
	ctx := context.Background()

	m.RecordAIOperation(ctx, "enhance", time.Second, 10, 20, nil)
	m.RecordAIOperation(ctx, "coverLetter", time.Second, 0, 0, errors.New("boom"))

	assert.Equal(t, int64(2), counterTotal(t, reader, "resumebuilder_ai_requests_total"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "resumebuilder_ai_errors_total"))
}

func TestRecordStageRespectsFallbackToggle(t *testing.T) {
	settings := allMetricsOn()
	settings.Pipeline.TrackFallbacks = false
	m, reader := newTestMetrics(t, settings)
	ctx := context.Background()

	m.RecordStage(ctx, "format", OutcomeOK)
	m.RecordStage(ctx, "enhance", OutcomeFallback)
	m.RecordStage(ctx, "export", OutcomeError)

	assert.Equal(t, int64(2), counterTotal(t, reader, "resumebuilder_stage_outcomes_total"))
}

func TestDisabledCategoriesRecordNothing(t *testing.T) {
	m, reader := newTestMetrics(t, config.CustomMetricsConfig{})
	ctx := context.Background()

	m.RecordAIOperation(ctx, "enhance", time.Second, 1, 1, nil)
	m.RecordRun(ctx, "build", time.Second, nil)
	m.RecordRateLimitHit(ctx, "ip", "/create_resume")

	assert.Zero(t, counterTotal(t, reader, "resumebuilder_ai_requests_total"))
	assert.Zero(t, counterTotal(t, reader, "resumebuilder_pipeline_runs_total"))
	assert.Zero(t, counterTotal(t, reader, "resumebuilder_rate_limit_hits_total"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordAIOperation(ctx, "enhance", time.Second, 1, 1, nil)
		m.RecordStage(ctx, "format", OutcomeOK)
		m.RecordRun(ctx, "build", time.Second, nil)
		m.RecordScores(ctx, 80, 90)
		m.RecordRateLimitHit(ctx, "ip", "/")
	})
}

func TestDisabledManager(t *testing.T) {
	logger := appErrors.NewLoggerWithWriter(io.Discard, slog.LevelInfo)
	mgr, err := NewManager(Settings{Enabled: false}, logger)
	require.NoError(t, err)

	assert.Nil(t, mgr.Metrics())
	assert.NotNil(t, mgr.Tracer("x"))
	assert.NoError(t, mgr.Shutdown(context.Background()))
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.ServiceName = "resumebuilder"
	cfg.Observability.Enabled = true
	cfg.Observability.SampleRate = 0.5
	cfg.Observability.Tracing.SampleRate = 0.25
	cfg.Observability.Prometheus.Port = "9464"

	s := SettingsFromConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", s.ServiceVersion)
	assert.Equal(t, 0.25, s.SampleRate)
	assert.Equal(t, "9464", s.Prometheus.Port)
	assert.True(t, s.Enabled)
}
