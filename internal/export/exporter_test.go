package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appErrors "resumebuilder/internal/errors"
	"resumebuilder/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = appErrors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)

type fakeRenderer struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 14, 30, 5, 0, time.UTC)
}

func sampleResume() types.FormattedResume {
	return types.FormattedResume{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "(555) 123-4567",
		JobTitle:   "Backend Engineer",
		Company:    "Acme",
		Experience: "Acme: Engineer (Jan 2020 - Present)\n• Built APIs.",
		ExperienceEntries: []types.ExperienceEntry{
			{Company: "Acme", Position: "Engineer", Date: "Jan 2020 - Present", Bullets: []string{"Built APIs."}},
		},
		Education:        "BS Computer Science - State University (2018)",
		EducationEntries: []types.EducationEntry{{Degree: "BS Computer Science", Institution: "State University", Year: "2018"}},
		Skills:           []string{"Go", "Docker"},
		SkillCategories: map[string][]string{
			"Programming Languages": {"Go"},
			"Tools & Platforms":     {"Docker"},
		},
		CoverLetter: "Dear Hiring Manager,",
	}
}

func newTestExporter(t *testing.T, dir string, renderer PDFRenderer) *Exporter {
	t.Helper()
	schema, err := NewSchemaValidator()
	require.NoError(t, err)
	e, err := New(Options{
		OutputDir: dir,
		Renderer:  renderer,
		Schema:    schema,
		Clock:     fixedClock,
		Logger:    testLogger,
	})
	require.NoError(t, err)
	return e
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestExportWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	e := newTestExporter(t, dir, &fakeRenderer{out: []byte("%PDF-1.7 fake")})

	report := types.AnalysisReport{Score: 77, Feedback: []string{"Add metrics"}}
	manifest, err := e.Export(context.Background(), sampleResume(), report)
	require.NoError(t, err)

	assert.Equal(t, "20240315_143005", manifest.Timestamp)
	assert.ElementsMatch(t, []string{
		"resume_20240315_143005.json",
		"resume_20240315_143005.html",
		"resume_20240315_143005.pdf",
		"cover_letter_20240315_143005.txt",
		"analysis_20240315_143005.json",
	}, listDir(t, dir))

	raw, err := os.ReadFile(manifest.JSON)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "20240315_143005", doc["timestamp"])
	assert.Equal(t, "Jane Doe", doc["name"])

	html, err := os.ReadFile(manifest.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Doe")
	assert.Contains(t, string(html), "Built APIs.")
	assert.Contains(t, string(html), "Programming Languages")

	letter, err := os.ReadFile(manifest.CoverLetter)
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,", string(letter))

	var analysis types.AnalysisReport
	raw, err = os.ReadFile(manifest.Analysis)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &analysis))
	assert.Equal(t, 77, analysis.Score)
}

func TestExportAdvancesOnTimestampCollision(t *testing.T) {
	dir := t.TempDir()
	e := newTestExporter(t, dir, &fakeRenderer{out: []byte("%PDF-1.4")})

	first, err := e.Export(context.Background(), sampleResume(), types.AnalysisReport{})
	require.NoError(t, err)
	second, err := e.Export(context.Background(), sampleResume(), types.AnalysisReport{})
	require.NoError(t, err)

	assert.Equal(t, "20240315_143005", first.Timestamp)
	assert.Equal(t, "20240315_143006", second.Timestamp)
	assert.Len(t, listDir(t, dir), 10)
}

func TestExportTimestampExhausted(t *testing.T) {
	dir := t.TempDir()
	e, err := New(Options{
		OutputDir:        dir,
		Renderer:         &fakeRenderer{out: []byte("%PDF")},
		TimestampRetries: 1,
		Clock:            fixedClock,
		Logger:           testLogger,
	})
	require.NoError(t, err)

	for _, ts := range []string{"20240315_143005", "20240315_143006"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "resume_"+ts+".json"), []byte("{}"), 0o644))
	}

	_, err = e.Export(context.Background(), sampleResume(), types.AnalysisReport{})
	require.Error(t, err)
	assert.True(t, appErrors.IsFileGenerationError(err))
	assert.Equal(t, appErrors.ErrCodeTimestampExhaust, appErrors.CodeOf(err))
}

func TestExportRenderFailureRemovesPartialFiles(t *testing.T) {
	tests := []struct {
		name     string
		renderer *fakeRenderer
	}{
		{"renderer error", &fakeRenderer{err: errors.New("chrome crashed")}},
		{"not a pdf", &fakeRenderer{out: []byte("<html>oops</html>")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := newTestExporter(t, dir, tt.renderer)

			_, err := e.Export(context.Background(), sampleResume(), types.AnalysisReport{})
			require.Error(t, err)
			assert.True(t, appErrors.IsFileGenerationError(err))
			assert.Equal(t, appErrors.ErrCodeRenderFailed, appErrors.CodeOf(err))
			assert.Empty(t, listDir(t, dir), "partial artifacts must be removed")
		})
	}
}

func TestExportSchemaViolationWritesNothing(t *testing.T) {
	dir := t.TempDir()
	renderer := &fakeRenderer{out: []byte("%PDF")}
	e := newTestExporter(t, dir, renderer)

	resume := sampleResume()
	resume.Skills = nil

	_, err := e.Export(context.Background(), resume, types.AnalysisReport{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCodeSchemaViolation, appErrors.CodeOf(err))
	assert.Empty(t, listDir(t, dir))
	assert.Zero(t, renderer.calls)
}

func TestNewRequiresDirAndRenderer(t *testing.T) {
	_, err := New(Options{Renderer: &fakeRenderer{}})
	assert.Error(t, err)
	_, err = New(Options{OutputDir: t.TempDir()})
	assert.Error(t, err)
}

func TestDefaultTemplateRendersOptionalSections(t *testing.T) {
	ts, err := DefaultTemplateSet()
	require.NoError(t, err)

	summary := "Seasoned <engineer>"
	resume := sampleResume()
	resume.Summary = &summary

	html, err := ts.Render(resume)
	require.NoError(t, err)
	assert.Contains(t, html, "Summary")
	assert.Contains(t, html, "Seasoned &lt;engineer&gt;")
	assert.NotContains(t, html, "Certifications")
}

func TestParseTemplateSetRejectsMissingPlaceholders(t *testing.T) {
	_, err := ParseTemplateSet("custom", "<h1>{{.Name}}</h1><p>{{.Email}}</p>")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCodeTemplateInvalid, appErrors.CodeOf(err))
	for _, field := range []string{"Education", "Experience", "JobTitle", "Phone", "SkillsJoined"} {
		assert.Contains(t, err.Error(), field)
	}

	_, err = ParseTemplateSet("broken", "{{.Name")
	assert.Error(t, err)

	ok := "{{.Name}}{{.Email}}{{.Phone}}{{.JobTitle}}{{.Experience}}{{.Education}}{{.SkillsJoined}}"
	set, err := ParseTemplateSet("minimal", ok)
	require.NoError(t, err)
	assert.Equal(t, "minimal", set.Source())
}

func TestLoadTemplateSetFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.tmpl")
	src := "<div>{{.Name}}|{{.Email}}|{{.Phone}}|{{.JobTitle}}|{{.Experience}}|{{.Education}}|{{.SkillsJoined}}</div>"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	set, err := LoadTemplateSet(path)
	require.NoError(t, err)

	out, err := set.Render(sampleResume())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<div>Jane Doe|jane@example.com|"))
	assert.Contains(t, out, "Go, Docker")

	_, err = LoadTemplateSet(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.Error(t, err)
}
