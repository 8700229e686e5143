package export

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

const defaultTimestampRetries = 5

var pdfMagic = []byte("%PDF")

// Options configures an Exporter.
type Options struct {
	OutputDir        string
	Renderer         PDFRenderer
	Templates        *TemplateSet
	Schema           *SchemaValidator // nil skips schema validation
	TimestampRetries int
	Clock            func() time.Time
	Logger           *errors.Logger
}

// Exporter writes the artifact set for one build. A call either writes every
// artifact or leaves none behind.
type Exporter struct {
	outputDir string
	renderer  PDFRenderer
	templates atomic.Pointer[TemplateSet]
	schema    *SchemaValidator
	retries   int
	clock     func() time.Time
	logger    *errors.Logger
}

// New creates an Exporter. Templates default to the embedded resume template.
func New(opts Options) (*Exporter, error) {
	if opts.OutputDir == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Output directory is required", nil)
	}
	if opts.Renderer == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "PDF renderer is required", nil)
	}
	if opts.Templates == nil {
		t, err := DefaultTemplateSet()
		if err != nil {
			return nil, err
		}
		opts.Templates = t
	}
	if opts.TimestampRetries <= 0 {
		opts.TimestampRetries = defaultTimestampRetries
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	e := &Exporter{
		outputDir: opts.OutputDir,
		renderer:  opts.Renderer,
		schema:    opts.Schema,
		retries:   opts.TimestampRetries,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
	e.templates.Store(opts.Templates)
	return e, nil
}

// NewFromConfig builds an Exporter with the chromedp renderer and the
// configured template and schema settings.
func NewFromConfig(cfg config.PipelineConfig, logger *errors.Logger) (*Exporter, error) {
	templates, err := LoadTemplateSet(cfg.TemplateFile)
	if err != nil {
		return nil, err
	}
	var schema *SchemaValidator
	if cfg.ValidateSchema {
		if schema, err = NewSchemaValidator(); err != nil {
			return nil, err
		}
	}
	return New(Options{
		OutputDir:        cfg.OutputDir,
		Renderer:         NewChromedpRenderer(cfg.ChromePath, cfg.RenderTimeout),
		Templates:        templates,
		Schema:           schema,
		TimestampRetries: cfg.TimestampRetries,
		Logger:           logger,
	})
}

// OutputDir returns the artifact directory.
func (e *Exporter) OutputDir() string {
	return e.outputDir
}

// SetTemplates swaps the resume template for subsequent exports.
func (e *Exporter) SetTemplates(t *TemplateSet) {
	e.templates.Store(t)
}

// RenderHTML renders resume with the current template.
func (e *Exporter) RenderHTML(resume types.FormattedResume) (string, error) {
	return e.templates.Load().Render(resume)
}

// exportedResume is the structured-data artifact.
type exportedResume struct {
	Timestamp string `json:"timestamp"`
	types.FormattedResume
}

// Export writes the JSON, HTML, PDF, cover letter and analysis artifacts under
// one timestamp.
func (e *Exporter) Export(ctx context.Context, resume types.FormattedResume, report types.AnalysisReport) (types.ArtifactManifest, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return types.ArtifactManifest{}, errors.NewFileGenerationError(errors.ErrCodeWriteFailed,
			"Failed to create output directory", err)
	}

	ts, reserved, err := e.reserve()
	if err != nil {
		return types.ArtifactManifest{}, err
	}
	manifest := manifestFor(e.outputDir, ts)
	written := []string{manifest.JSON}
	log := e.logger.With("timestamp", ts)

	fail := func(err error) (types.ArtifactManifest, error) {
		e.cleanup(written)
		if !errors.IsFileGenerationError(err) {
			err = errors.NewFileGenerationError(errors.ErrCodeWriteFailed, "Failed to generate resume files", err)
		}
		log.LogError(err, "Export failed, removed partial artifacts", "removed", len(written))
		return types.ArtifactManifest{}, err
	}

	doc, err := json.MarshalIndent(exportedResume{Timestamp: ts, FormattedResume: resume}, "", "  ")
	if err != nil {
		reserved.Close()
		return fail(err)
	}
	if e.schema != nil {
		if err := e.schema.Validate(doc); err != nil {
			reserved.Close()
			return fail(err)
		}
	}
	_, werr := reserved.Write(doc)
	if cerr := reserved.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fail(werr)
	}

	html, err := e.RenderHTML(resume)
	if err != nil {
		return fail(err)
	}
	if err := e.writeNew(&written, manifest.HTML, []byte(html)); err != nil {
		return fail(err)
	}

	log.Debug("Rendering PDF")
	pdf, err := e.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return fail(errors.NewFileGenerationError(errors.ErrCodeRenderFailed, "Failed to render PDF", err))
	}
	if !bytes.HasPrefix(pdf, pdfMagic) {
		return fail(errors.NewFileGenerationError(errors.ErrCodeRenderFailed, "Renderer did not produce a PDF document", nil))
	}
	if err := e.writeNew(&written, manifest.PDF, pdf); err != nil {
		return fail(err)
	}

	if err := e.writeNew(&written, manifest.CoverLetter, []byte(resume.CoverLetter)); err != nil {
		return fail(err)
	}

	analysis, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fail(err)
	}
	if err := e.writeNew(&written, manifest.Analysis, analysis); err != nil {
		return fail(err)
	}

	log.Info("Resume artifacts written", "files", len(written), "output_dir", e.outputDir)
	return manifest, nil
}

// reserve claims a timestamp by exclusively creating its JSON artifact. A taken
// second moves the candidate forward one second at a time.
func (e *Exporter) reserve() (string, *os.File, error) {
	base := e.clock()
	for i := 0; i <= e.retries; i++ {
		ts := base.Add(time.Duration(i) * time.Second).Format(TimestampLayout)
		path := manifestFor(e.outputDir, ts).JSON

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if i > 0 {
				e.logger.Debug("Timestamp collision, advanced", "timestamp", ts, "attempts", i+1)
			}
			return ts, f, nil
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return "", nil, errors.NewFileGenerationError(errors.ErrCodeWriteFailed, "Failed to create resume file", err)
		}
	}
	return "", nil, errors.NewFileGenerationError(errors.ErrCodeTimestampExhaust,
		fmt.Sprintf("No free timestamp after %d attempts", e.retries+1), nil)
}

func (e *Exporter) writeNew(written *[]string, path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.NewFileGenerationError(errors.ErrCodeWriteFailed, "Failed to create "+path, err)
	}
	*written = append(*written, path)

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.NewFileGenerationError(errors.ErrCodeWriteFailed, "Failed to write "+path, err)
	}
	return nil
}

func (e *Exporter) cleanup(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("Failed to remove partial artifact", "path", p, "error", err.Error())
		}
	}
}
