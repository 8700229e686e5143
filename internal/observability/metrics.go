package observability

import (
	"context"
	"fmt"
	"time"

	"resumebuilder/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Stage outcomes recorded per pipeline stage.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	settings config.CustomMetricsConfig

	AIDuration   metric.Float64Histogram
	AIRequests   metric.Int64Counter
	AIErrors     metric.Int64Counter
	AITokenUsage metric.Int64Histogram

	Builds        metric.Int64Counter
	BuildDuration metric.Float64Histogram
	StageOutcomes metric.Int64Counter
	ResumeScores  metric.Int64Histogram

	RateLimitHits metric.Int64Counter
}

// NewMetrics registers the pipeline instruments on meter.
func NewMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}
	var err error

	if m.AIDuration, err = meter.Float64Histogram("resumebuilder_ai_duration_seconds",
		metric.WithDescription("Time spent in language model calls"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI duration metric: %w", err)
	}
	if m.AIRequests, err = meter.Int64Counter("resumebuilder_ai_requests_total",
		metric.WithDescription("Total number of language model calls")); err != nil {
		return nil, fmt.Errorf("failed to create AI request metric: %w", err)
	}
	if m.AIErrors, err = meter.Int64Counter("resumebuilder_ai_errors_total",
		metric.WithDescription("Total number of failed language model calls")); err != nil {
		return nil, fmt.Errorf("failed to create AI error metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("resumebuilder_ai_tokens",
		metric.WithDescription("Tokens per language model call by direction"),
		metric.WithUnit("tokens")); err != nil {
		return nil, fmt.Errorf("failed to create AI token metric: %w", err)
	}

	if m.Builds, err = meter.Int64Counter("resumebuilder_pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs by kind and result")); err != nil {
		return nil, fmt.Errorf("failed to create pipeline run metric: %w", err)
	}
	if m.BuildDuration, err = meter.Float64Histogram("resumebuilder_pipeline_duration_seconds",
		metric.WithDescription("End-to-end pipeline run duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create pipeline duration metric: %w", err)
	}
	if m.StageOutcomes, err = meter.Int64Counter("resumebuilder_stage_outcomes_total",
		metric.WithDescription("Pipeline stage completions by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create stage outcome metric: %w", err)
	}
	if m.ResumeScores, err = meter.Int64Histogram("resumebuilder_resume_score",
		metric.WithDescription("Overall and ATS scores of analyzed resumes")); err != nil {
		return nil, fmt.Errorf("failed to create score metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter("resumebuilder_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limited requests")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}

	return m, nil
}

// RecordAIOperation records one language model call.
func (m *Metrics) RecordAIOperation(ctx context.Context, operation string, duration time.Duration, inputTokens, outputTokens int64, err error) {
	if m == nil || !m.settings.AIOperations.Enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	)

	m.AIRequests.Add(ctx, 1, attrs)
	if err != nil {
		m.AIErrors.Add(ctx, 1, attrs)
	}
	if m.settings.AIOperations.TrackDuration {
		m.AIDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.settings.AIOperations.TrackTokenUsage && inputTokens+outputTokens > 0 {
		for direction, n := range map[string]int64{"input": inputTokens, "output": outputTokens} {
			m.AITokenUsage.Record(ctx, n, metric.WithAttributes(
				attribute.String("operation", operation),
				attribute.String("token_type", direction),
			))
		}
	}
}

// RecordStage records a stage completion. outcome is one of the Outcome constants.
func (m *Metrics) RecordStage(ctx context.Context, stage, outcome string) {
	if m == nil || !m.settings.Pipeline.Enabled || !m.settings.Pipeline.TrackStages {
		return
	}
	if outcome == OutcomeFallback && !m.settings.Pipeline.TrackFallbacks {
		return
	}
	m.StageOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

// RecordRun records a finished pipeline run of the given kind ("build" or "analyze").
func (m *Metrics) RecordRun(ctx context.Context, kind string, duration time.Duration, err error) {
	if m == nil || !m.settings.Pipeline.Enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", err == nil),
	)
	m.Builds.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordScores records the overall and ATS scores of an analysis.
func (m *Metrics) RecordScores(ctx context.Context, overall, ats int) {
	if m == nil || !m.settings.Pipeline.Enabled || !m.settings.Pipeline.TrackScores {
		return
	}
	m.ResumeScores.Record(ctx, int64(overall), metric.WithAttributes(attribute.String("score", "overall")))
	m.ResumeScores.Record(ctx, int64(ats), metric.WithAttributes(attribute.String("score", "ats")))
}

// RecordRateLimitHit records a rejected request. limiter is "ip" or "api_key".
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limiter, path string) {
	if m == nil || !m.settings.Infrastructure.Enabled || !m.settings.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiter),
		attribute.String("path", path),
	))
}
