package common

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDecodeRecordSkillShapes(t *testing.T) {
	tests := []struct {
		name   string
		skills string
		want   []string
		raw    string
	}{
		{name: "list", skills: `["Go", "SQL"]`, want: []string{"Go", "SQL"}, raw: "Go, SQL"},
		{name: "comma string", skills: `"Go, SQL, , Docker"`, want: []string{"Go", "SQL", "Docker"}, raw: "Go, SQL, , Docker"},
		{name: "null", skills: `null`, want: nil, raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(`{"name":"Jane","summary":"  ","projects":"CLI tools","skills":` + tt.skills + `}`))
			require.NoError(t, err)
			assert.Equal(t, "Jane", rec.Name)
			assert.Equal(t, tt.want, rec.Skills)
			assert.Equal(t, tt.raw, rec.SkillsRaw)
			assert.Nil(t, rec.Summary, "blank optional fields become nil")
			require.NotNil(t, rec.Projects)
			assert.Equal(t, "CLI tools", *rec.Projects)
		})
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"name":`))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = DecodeRecord([]byte(`{"skills": 42}`))
	require.Error(t, err)
	assert.Equal(t, "skills", errors.FieldOf(err))
}

func TestLoadAnalysisSourceText(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Led a team of five engineers.")
	jd := writeFile(t, dir, "jd.md", "We need Go and Kubernetes.")

	fp := NewFileProcessor(nil)
	rec, err := fp.LoadAnalysisSource(resume, SourceOptions{Skills: "Go, Kubernetes", JobDescriptionFile: jd})
	require.NoError(t, err)

	assert.Equal(t, "Led a team of five engineers.", rec.Experience)
	assert.Equal(t, []string{"Go", "Kubernetes"}, rec.Skills)
	require.NotNil(t, rec.JobDescription)
	assert.Equal(t, "We need Go and Kubernetes.", *rec.JobDescription)
}

func TestLoadAnalysisSourceJSONKeepsRecordSkills(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "record.json", `{"experience":"Built things.","skills":["Go"]}`)

	rec, err := NewFileProcessor(nil).LoadAnalysisSource(path, SourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, rec.Skills)
	assert.Nil(t, rec.JobDescription)
}

func TestExtractTextRejections(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(nil)

	_, err := fp.ExtractText(writeFile(t, dir, "resume.docx", "binary"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnsupportedSource, errors.CodeOf(err))

	_, err = fp.ExtractText(writeFile(t, dir, "resume.pdf", "not really a pdf"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotReadable, errors.CodeOf(err))

	_, err = fp.ExtractText(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.CodeOf(err))
}

func TestRunCommandWritesFormattedOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "record.json", `{"name":"Jane","experience":"Built things.","skills":"Go"}`)
	output := filepath.Join(dir, "out", "report.md")

	var logged bool
	err := RunCommand(context.Background(), nil,
		CommandConfig{OutputFile: output, OutputFormat: "markdown"},
		[]string{input},
		func(fp *FileProcessor, args []string) (types.ResumeRecord, error) {
			return fp.LoadRecord(args[0], SourceOptions{})
		},
		func(_ context.Context, rec types.ResumeRecord) (types.AnalysisReport, error) {
			return types.AnalysisReport{Score: len(rec.Skills) * 10}, nil
		},
		func(types.ResumeRecord, CommandConfig) { logged = true },
	)
	require.NoError(t, err)
	assert.True(t, logged)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# Resume Analysis"))
	assert.Contains(t, string(content), "**Overall Score:** 10/100")
}

func TestRunCommandStopsOnLoadError(t *testing.T) {
	called := false
	err := RunCommand(context.Background(), nil,
		CommandConfig{OutputFormat: "json"},
		[]string{"missing.json"},
		func(fp *FileProcessor, args []string) (types.ResumeRecord, error) {
			return fp.LoadRecord(args[0], SourceOptions{})
		},
		func(context.Context, types.ResumeRecord) (types.AnalysisReport, error) {
			called = true
			return types.AnalysisReport{}, nil
		},
		nil,
	)
	require.Error(t, err)
	assert.False(t, called)
}
