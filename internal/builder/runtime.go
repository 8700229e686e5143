package builder

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/analysis"
	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/export"
	"resumebuilder/internal/formatting"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/storage"
	"resumebuilder/internal/validation"
)

const templateDebounce = 250 * time.Millisecond

// Runtime owns the long-lived collaborators behind a ResumeBuilder.
type Runtime struct {
	Builder  *ResumeBuilder
	Enhancer *ai.Enhancer
	Exporter *export.Exporter
	History  storage.HistoryStore

	db      *sql.DB
	watcher *export.TemplateWatcher
	logger  *errors.Logger
}

// NewRuntime wires the pipeline from configuration. metrics may be nil.
func NewRuntime(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *errors.Logger) (*Runtime, error) {
	enhancer, err := ai.NewEnhancerFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	var recorder Recorder
	if metrics != nil {
		recorder = metrics
		enhancer.SetRecorder(metrics)
	}

	exporter, err := export.NewFromConfig(cfg.Pipeline, logger)
	if err != nil {
		enhancer.Close()
		return nil, err
	}

	rt := &Runtime{
		Enhancer: enhancer,
		Exporter: exporter,
		History:  storage.DisabledHistory{},
		logger:   logger,
	}

	var archive storage.ArtifactArchive = storage.NoopArchive{}
	if cfg.Storage.S3.Enabled {
		s3Archive, err := storage.NewS3Archive(ctx, cfg.Storage.S3)
		if err != nil {
			rt.Close()
			return nil, err
		}
		archive = s3Archive
		logger.Info("S3 artifact archive enabled", "bucket", cfg.Storage.S3.Bucket)
	}

	if cfg.Storage.Postgres.Enabled {
		if err := rt.openHistory(ctx, cfg.Storage.Postgres); err != nil {
			rt.Close()
			return nil, err
		}
	}

	if cfg.Pipeline.WatchTemplate && cfg.Pipeline.TemplateFile != "" {
		rt.watcher = export.NewTemplateWatcher(cfg.Pipeline.TemplateFile, exporter, templateDebounce, logger)
		if err := rt.watcher.Start(); err != nil {
			logger.LogError(err, "Template hot reload disabled", "path", cfg.Pipeline.TemplateFile)
			rt.watcher = nil
		}
	}

	rt.Builder = New(Options{
		Validator: validation.NewValidator(validation.LimitsFromConfig(cfg.Pipeline)),
		Formatter: formatting.New(logger),
		Enhancer:  enhancer,
		Analyzer:  analysis.New(cfg.Pipeline.ATSFriendlyThreshold, logger),
		Exporter:  exporter,
		Archive:   archive,
		History:   rt.History,
		Metrics:   recorder,
		Logger:    logger,
	})
	return rt, nil
}

func (rt *Runtime) openHistory(ctx context.Context, cfg config.PostgresConfig) error {
	db, err := storage.Connect(ctx, cfg.DatabaseURL, storage.OptionsFromConfig(cfg))
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to connect to build history database", err)
	}
	rt.db = db

	if cfg.Migrate {
		if err := storage.RunMigrations(ctx, db); err != nil {
			return errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to migrate build history database", err)
		}
	}
	rt.History = storage.NewPGHistory(db)
	rt.logger.Info("Build history enabled")
	return nil
}

// Close stops the template watcher and releases the model clients and
// database pool.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.watcher != nil {
		errs = append(errs, rt.watcher.Stop())
	}
	if rt.Enhancer != nil {
		errs = append(errs, rt.Enhancer.Close())
	}
	if rt.db != nil {
		errs = append(errs, rt.db.Close())
	}
	return stderrors.Join(errs...)
}
