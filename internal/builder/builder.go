// Package builder sequences the resume pipeline: sanitize, validate, format,
// enhance, analyze and export.
package builder

import (
	"context"
	"time"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/analysis"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/formatting"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/storage"
	"resumebuilder/internal/types"
	"resumebuilder/internal/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline stages, as recorded in stage outcome metrics.
const (
	StageValidate    = "validate"
	StageFormat      = "format"
	StageEnhance     = "enhance"
	StageCoverLetter = "cover_letter"
	StageAnalyze     = "analyze"
	StageExport      = "export"
	StageArchive     = "archive"
	StageHistory     = "history"
)

// TextTransform rewrites experience text and drafts cover letters. Failures
// come back as degraded results, never as errors.
type TextTransform interface {
	EnhanceExperience(ctx context.Context, text string) types.Result[string]
	GenerateCoverLetter(ctx context.Context, resume types.FormattedResume) types.Result[string]
}

// ArtifactExporter writes the artifacts for one build.
type ArtifactExporter interface {
	Export(ctx context.Context, resume types.FormattedResume, report types.AnalysisReport) (types.ArtifactManifest, error)
}

// Recorder receives pipeline metrics. *observability.Metrics satisfies it.
type Recorder interface {
	RecordStage(ctx context.Context, stage, outcome string)
	RecordRun(ctx context.Context, kind string, duration time.Duration, err error)
	RecordScores(ctx context.Context, overall, ats int)
}

// Options configures a ResumeBuilder. Exporter is required for Build; the
// other fields have working defaults.
type Options struct {
	Validator *validation.Validator
	Formatter *formatting.Formatter
	Enhancer  TextTransform
	Analyzer  *analysis.Analyzer
	Exporter  ArtifactExporter
	Archive   storage.ArtifactArchive
	History   storage.HistoryStore
	Metrics   Recorder
	Clock     func() time.Time
	Logger    *errors.Logger
}

// ResumeBuilder runs one resume through the pipeline per call. It holds no
// per-request state and is safe for concurrent use.
type ResumeBuilder struct {
	validator *validation.Validator
	formatter *formatting.Formatter
	enhancer  TextTransform
	analyzer  *analysis.Analyzer
	exporter  ArtifactExporter
	archive   storage.ArtifactArchive
	history   storage.HistoryStore
	metrics   Recorder
	now       func() time.Time
	tracer    trace.Tracer
	logger    *errors.Logger
}

// New fills unset options with defaults.
func New(opts Options) *ResumeBuilder {
	b := &ResumeBuilder{
		validator: opts.Validator,
		formatter: opts.Formatter,
		enhancer:  opts.Enhancer,
		analyzer:  opts.Analyzer,
		exporter:  opts.Exporter,
		archive:   opts.Archive,
		history:   opts.History,
		metrics:   opts.Metrics,
		now:       opts.Clock,
		tracer:    otel.Tracer("resumebuilder.builder"),
		logger:    opts.Logger,
	}
	if b.validator == nil {
		b.validator = validation.NewValidator(validation.DefaultLimits())
	}
	if b.formatter == nil {
		b.formatter = formatting.New(opts.Logger)
	}
	if b.enhancer == nil {
		b.enhancer = ai.NewEnhancer(nil, nil, ai.Prompts{}, ai.Prompts{}, opts.Logger)
	}
	if b.analyzer == nil {
		b.analyzer = analysis.New(analysis.DefaultATSFriendlyThreshold, opts.Logger)
	}
	if b.archive == nil {
		b.archive = storage.NoopArchive{}
	}
	if b.history == nil {
		b.history = storage.DisabledHistory{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Build runs the full pipeline and writes the artifacts. Validation failures
// come back as field validation errors; export failures as file generation
// errors. AI and sub-analysis failures degrade instead of failing.
func (b *ResumeBuilder) Build(ctx context.Context, rec types.ResumeRecord) (types.BuildResult, error) {
	start := b.now()
	ctx, span := b.tracer.Start(ctx, "builder.Build")
	defer span.End()

	result, err := b.build(ctx, rec)
	b.recordRun(ctx, "build", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.CodeOf(err))
		return types.BuildResult{}, err
	}

	span.SetAttributes(
		attribute.String("build.timestamp", result.Manifest.Timestamp),
		attribute.Int("analysis.score", result.Analysis.Score),
		attribute.Bool("experience.enhanced", result.Resume.ExperienceEnhanced),
	)
	return result, nil
}

func (b *ResumeBuilder) build(ctx context.Context, rec types.ResumeRecord) (types.BuildResult, error) {
	rec = validation.SanitizeRecord(rec)

	if err := b.validator.Validate(rec); err != nil {
		b.stage(ctx, StageValidate, observability.OutcomeError)
		b.logger.Debug("Resume rejected", "field", errors.FieldOf(err), "code", errors.CodeOf(err))
		return types.BuildResult{}, err
	}
	b.stage(ctx, StageValidate, observability.OutcomeOK)

	resume := b.formatter.Format(rec)
	b.stage(ctx, StageFormat, observability.OutcomeOK)

	b.enhance(ctx, &resume)

	letter := b.enhancer.GenerateCoverLetter(ctx, resume)
	resume.CoverLetter = letter.Value
	b.stageResult(ctx, StageCoverLetter, letter.Fallback, letter.Reason)

	report := b.analyze(ctx, resume, rec.JobDescription)

	manifest, err := b.exporter.Export(ctx, resume, report)
	if err != nil {
		b.stage(ctx, StageExport, observability.OutcomeError)
		return types.BuildResult{}, err
	}
	b.stage(ctx, StageExport, observability.OutcomeOK)

	b.persist(ctx, manifest, resume, report)

	b.logger.Info("Resume built",
		"timestamp", manifest.Timestamp,
		"score", report.Score,
		"ats_score", report.ATSCompatibility.Score,
		"experience_enhanced", resume.ExperienceEnhanced,
	)
	return types.BuildResult{Manifest: manifest, Resume: resume, Analysis: report}, nil
}

// enhance replaces the experience with the model's rewrite, re-formatted.
// On fallback the formatted original stays.
func (b *ResumeBuilder) enhance(ctx context.Context, resume *types.FormattedResume) {
	res := b.enhancer.EnhanceExperience(ctx, resume.Experience)
	b.stageResult(ctx, StageEnhance, res.Fallback, res.Reason)
	if res.Fallback {
		return
	}

	text := validation.Sanitize(res.Value)
	if text == "" {
		b.logger.Warn("Enhanced experience was empty after sanitizing, keeping original")
		return
	}
	resume.Experience, resume.ExperienceEntries = b.formatter.Experience(text)
	resume.ExperienceEnhanced = true
}

func (b *ResumeBuilder) analyze(ctx context.Context, resume types.FormattedResume, jobDescription *string) types.AnalysisReport {
	var jd string
	if jobDescription != nil {
		jd = *jobDescription
	}
	report := b.analyzer.Analyze(resume, jd)
	if len(report.Degraded) > 0 {
		b.stage(ctx, StageAnalyze, observability.OutcomeFallback)
	} else {
		b.stage(ctx, StageAnalyze, observability.OutcomeOK)
	}
	if b.metrics != nil {
		b.metrics.RecordScores(ctx, report.Score, report.ATSCompatibility.Score)
	}
	return report
}

// persist mirrors the artifacts and records history. The local files are
// authoritative, so failures here are logged only.
func (b *ResumeBuilder) persist(ctx context.Context, manifest types.ArtifactManifest, resume types.FormattedResume, report types.AnalysisReport) {
	if err := b.archive.Archive(ctx, manifest); err != nil {
		b.stage(ctx, StageArchive, observability.OutcomeError)
		b.logger.LogError(err, "Failed to archive artifacts", "timestamp", manifest.Timestamp)
	} else {
		b.stage(ctx, StageArchive, observability.OutcomeOK)
	}

	err := b.history.Record(ctx, types.BuildRecord{
		Timestamp:          manifest.Timestamp,
		Name:               resume.Name,
		JobTitle:           resume.JobTitle,
		Company:            resume.Company,
		Score:              report.Score,
		ATSScore:           report.ATSCompatibility.Score,
		ExperienceEnhanced: resume.ExperienceEnhanced,
		CreatedAt:          b.now().UTC(),
	})
	if err != nil {
		b.stage(ctx, StageHistory, observability.OutcomeError)
		b.logger.LogError(err, "Failed to record build history", "timestamp", manifest.Timestamp)
		return
	}
	b.stage(ctx, StageHistory, observability.OutcomeOK)
}

// Analyze scores a record without calling the model or writing files. Only
// experience and skills are required.
func (b *ResumeBuilder) Analyze(ctx context.Context, rec types.ResumeRecord) (types.AnalysisReport, error) {
	start := b.now()
	ctx, span := b.tracer.Start(ctx, "builder.Analyze")
	defer span.End()

	rec = validation.SanitizeRecord(rec)
	if err := b.validator.ValidateForAnalysis(rec); err != nil {
		b.stage(ctx, StageValidate, observability.OutcomeError)
		b.recordRun(ctx, "analyze", start, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.CodeOf(err))
		return types.AnalysisReport{}, err
	}
	b.stage(ctx, StageValidate, observability.OutcomeOK)

	report := b.analyze(ctx, b.formatter.Format(rec), rec.JobDescription)
	b.recordRun(ctx, "analyze", start, nil)
	span.SetAttributes(attribute.Int("analysis.score", report.Score))
	return report, nil
}

func (b *ResumeBuilder) stageResult(ctx context.Context, stage string, fallback bool, reason string) {
	if !fallback {
		b.stage(ctx, stage, observability.OutcomeOK)
		return
	}
	b.logger.Warn("Stage degraded to fallback", "stage", stage, "reason", reason)
	b.stage(ctx, stage, observability.OutcomeFallback)
}

func (b *ResumeBuilder) stage(ctx context.Context, stage, outcome string) {
	if b.metrics != nil {
		b.metrics.RecordStage(ctx, stage, outcome)
	}
}

func (b *ResumeBuilder) recordRun(ctx context.Context, kind string, start time.Time, err error) {
	if b.metrics != nil {
		b.metrics.RecordRun(ctx, kind, b.now().Sub(start), err)
	}
}
