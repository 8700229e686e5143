package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/config"
	appErrors "resumebuilder/internal/errors"
	"resumebuilder/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = appErrors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)

type fakePipeline struct {
	lastRecord types.ResumeRecord
	buildErr   error
	analyzeErr error
}

func (f *fakePipeline) Build(_ context.Context, rec types.ResumeRecord) (types.BuildResult, error) {
	f.lastRecord = rec
	if f.buildErr != nil {
		return types.BuildResult{}, f.buildErr
	}
	return types.BuildResult{
		Manifest: types.ArtifactManifest{Timestamp: "20240315_143005"},
		Analysis: types.AnalysisReport{Score: 77},
	}, nil
}

func (f *fakePipeline) Analyze(_ context.Context, rec types.ResumeRecord) (types.AnalysisReport, error) {
	f.lastRecord = rec
	if f.analyzeErr != nil {
		return types.AnalysisReport{}, f.analyzeErr
	}
	return types.AnalysisReport{Score: 64}, nil
}

type fakeModels struct {
	health map[string]*ai.ModelInfo
}

func (f fakeModels) Health(context.Context) map[string]*ai.ModelInfo { return f.health }
func (f fakeModels) BreakerStats() map[string]any                   { return map[string]any{"enhance": map[string]any{"state": "closed"}} }

func newTestServer(t *testing.T, pipeline *fakePipeline, mutate func(*ServerConfig)) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := ServerConfig{Version: "test", MaxRequestSize: 1 << 20}
	if mutate != nil {
		mutate(&cfg)
	}
	s := NewServer(cfg, Dependencies{Pipeline: pipeline, OutputDir: dir}, testLogger)
	t.Cleanup(func() {
		if s.RateLimiter != nil {
			s.RateLimiter.Close()
		}
	})
	return s, dir
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestCreateResumeForm(t *testing.T) {
	p := &fakePipeline{}
	s, _ := newTestServer(t, p, nil)

	form := url.Values{
		"name":       {"Jane Doe"},
		"email":      {"jane@example.com"},
		"phone":      {"1234567890"},
		"job_title":  {"Engineer"},
		"company":    {"Acme"},
		"education":  {"BSc - MIT (2018)"},
		"experience": {"Built things."},
		"skills":     {"go, python, ,sql"},
		"summary":    {""},
		"projects":   {"Open source"},
	}
	req := httptest.NewRequest(http.MethodPost, "/create_resume", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, body := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Resume created successfully", body["message"])
	assert.Equal(t, "20240315_143005", body["timestamp"])
	assert.EqualValues(t, 77, body["analysis"].(map[string]any)["score"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	assert.Equal(t, []string{"go", "python", "sql"}, p.lastRecord.Skills)
	assert.Equal(t, "go, python, ,sql", p.lastRecord.SkillsRaw)
	assert.Nil(t, p.lastRecord.Summary)
	require.NotNil(t, p.lastRecord.Projects)
	assert.Equal(t, "Open source", *p.lastRecord.Projects)
}

func TestCreateResumeMultipart(t *testing.T) {
	p := &fakePipeline{}
	s, _ := newTestServer(t, p, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Jane Doe"))
	require.NoError(t, mw.WriteField("skills", "go"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create_resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, _ := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", p.lastRecord.Name)
	assert.Equal(t, []string{"go"}, p.lastRecord.Skills)
}

func TestCreateResumeJSONSkillShapes(t *testing.T) {
	tests := []struct {
		name   string
		skills string
		want   []string
	}{
		{"list", `["go","sql"]`, []string{"go", "sql"}},
		{"string", `"go, sql"`, []string{"go", "sql"}},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{}
			s, _ := newTestServer(t, p, nil)

			req := httptest.NewRequest(http.MethodPost, "/create_resume",
				strings.NewReader(`{"name":"Jane","skills":`+tt.skills+`,"job_description":"Go role"}`))
			req.Header.Set("Content-Type", "application/json; charset=utf-8")

			rec, _ := do(t, s.Handler(), req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, p.lastRecord.Skills)
			require.NotNil(t, p.lastRecord.JobDescription)
			assert.Equal(t, "Go role", *p.lastRecord.JobDescription)
		})
	}
}

func TestCreateResumeErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		message   string
		errorType string
		field     string
	}{
		{
			name:      "validation",
			err:       appErrors.NewFieldValidationError("email", appErrors.ErrCodeMissingField, "email is required"),
			status:    http.StatusBadRequest,
			message:   "email is required",
			errorType: "validation",
			field:     "email",
		},
		{
			name:      "file generation",
			err:       appErrors.NewFileGenerationError(appErrors.ErrCodeRenderFailed, "chrome crashed at /tmp/x", nil),
			status:    http.StatusInternalServerError,
			message:   "Failed to generate resume files",
			errorType: "file_generation",
		},
		{
			name:      "unexpected",
			err:       stderrors.New("boom"),
			status:    http.StatusInternalServerError,
			message:   "An unexpected error occurred",
			errorType: "internal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakePipeline{buildErr: tt.err}, nil)
			req := httptest.NewRequest(http.MethodPost, "/create_resume", strings.NewReader(`{"name":"x"}`))
			req.Header.Set("Content-Type", "application/json")

			rec, body := do(t, s.Handler(), req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.errorType, body["error_type"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			} else {
				assert.NotContains(t, body, "field")
			}
		})
	}
}

func TestAnalyzeResume(t *testing.T) {
	p := &fakePipeline{}
	s, _ := newTestServer(t, p, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze_resume",
		strings.NewReader(`{"experience":"Led a team.","skills":["go"]}`))
	req.Header.Set("Content-Type", "application/json")

	rec, body := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 64, body["analysis"].(map[string]any)["score"])
	assert.Equal(t, "Led a team.", p.lastRecord.Experience)
}

func TestAnalyzeResumeRequiresJSON(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze_resume", strings.NewReader("experience=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, body := do(t, s.Handler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", body["error_type"])
}

func TestAnalyzeResumeBadJSON(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze_resume", strings.NewReader(`{"skills":42}`))
	req.Header.Set("Content-Type", "application/json")

	rec, _ := do(t, s.Handler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestTooLarge(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, func(c *ServerConfig) { c.MaxRequestSize = 16 })
	req := httptest.NewRequest(http.MethodPost, "/analyze_resume",
		strings.NewReader(`{"experience":"`+strings.Repeat("a", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")

	rec, body := do(t, s.Handler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["message"], "too large")
}

func TestDownload(t *testing.T) {
	s, dir := newTestServer(t, &fakePipeline{}, nil)
	ts := "20240315_143005"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume_"+ts+".pdf"), []byte("%PDF-1.4 test"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/download/"+ts+"/pdf", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "resume_"+ts+".pdf")
	assert.Equal(t, "%PDF-1.4 test", rec.Body.String())
}

func TestDownloadRejections(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"bad timestamp", "/download/bad-timestamp/pdf", http.StatusBadRequest},
		{"bad file type", "/download/20240315_143005/exe", http.StatusBadRequest},
		{"missing artifact", "/download/20240315_143005/html", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakePipeline{}, nil)
			rec, body := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestDownloadBadTimestampNamesField(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, nil)
	_, body := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/download/bad-timestamp/pdf", nil))
	assert.Equal(t, "timestamp", body["field"])
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create_resume", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, func(c *ServerConfig) { c.APIKeys = []string{"secret-key-123", ""} })
	h := s.Handler()

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/analyze_resume", strings.NewReader(`{"experience":"x","skills":["go"]}`))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	rec, body := do(t, h, newReq())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth", body["error_type"])

	req := newReq()
	req.Header.Set("X-API-Key", "wrong")
	rec, _ = do(t, h, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = newReq()
	req.Header.Set("X-API-Key", "secret-key-123")
	rec, _ = do(t, h, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = newReq()
	req.Header.Set("Authorization", "Bearer secret-key-123")
	rec, _ = do(t, h, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays public.
	rec, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Keys can be rotated while serving.
	s.SetAPIKeys([]string{"rotated-key-456"})
	req = newReq()
	req.Header.Set("X-API-Key", "secret-key-123")
	rec, _ = do(t, h, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec, _ := do(t, s.Handler(), req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, nil)
	s.Models = fakeModels{health: map[string]*ai.ModelInfo{
		"enhance": {Name: "gemini-2.0-flash", Available: true},
	}}

	rec, body := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "ai_models")

	s.Models = fakeModels{health: map[string]*ai.ModelInfo{
		"enhance": {Name: "gemini-2.0-flash", Available: false, Error: "quota"},
	}}
	rec, body = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{}, func(c *ServerConfig) {
		c.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true}
	})
	s.Models = fakeModels{}

	rec, body := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "resumebuilder", body["service"])
	assert.EqualValues(t, 5, body["rate_limiting"].(map[string]any)["burst_capacity"])
	assert.Contains(t, body, "circuit_breakers")
}

func TestServerConfigFrom(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Host: "0.0.0.0", Port: "9090", MaxRequestSize: 16 << 20, APIKeys: []string{"k"}}}
	sc := ServerConfigFrom(cfg, "1.2.3")
	assert.Equal(t, "9090", sc.Port)
	assert.Equal(t, int64(16<<20), sc.MaxRequestSize)
	assert.Equal(t, "1.2.3", sc.Version)
	assert.Same(t, &cfg.Server.RateLimit, sc.RateLimit)
}
