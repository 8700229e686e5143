package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitReload drains reload results until one matches wantErr.
func waitReload(t *testing.T, results <-chan error, wantErr bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-results:
			if (err != nil) == wantErr {
				return
			}
		case <-deadline:
			t.Fatalf("no reload with error=%v observed", wantErr)
		}
	}
}

const validTemplate = "<p>{{.Name}} {{.Email}} {{.Phone}} {{.JobTitle}} {{.Experience}} {{.Education}} {{.SkillsJoined}}</p>"

func TestTemplateWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(validTemplate), 0o644))

	set, err := LoadTemplateSet(path)
	require.NoError(t, err)
	e, err := New(Options{OutputDir: t.TempDir(), Renderer: &fakeRenderer{}, Templates: set, Logger: testLogger})
	require.NoError(t, err)

	w := NewTemplateWatcher(path, e, 50*time.Millisecond, testLogger)
	results := make(chan error, 16)
	w.onReload = func(err error) { results <- err }
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("<h1>v2</h1>"+validTemplate), 0o644))
	waitReload(t, results, false)

	out, err := e.RenderHTML(sampleResume())
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>v2</h1>")

	// A broken template keeps the previous one.
	require.NoError(t, os.WriteFile(path, []byte("<h1>{{.Name}}</h1>"), 0o644))
	waitReload(t, results, true)

	out, err = e.RenderHTML(sampleResume())
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>v2</h1>")
}

func TestTemplateWatcherStartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.tmpl")
	e, err := New(Options{OutputDir: t.TempDir(), Renderer: &fakeRenderer{}, Logger: testLogger})
	require.NoError(t, err)

	w := NewTemplateWatcher(path, e, 0, testLogger)
	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
