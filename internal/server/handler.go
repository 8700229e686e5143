package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/export"
	"resumebuilder/internal/types"
	"resumebuilder/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultMultipartMemory = 32 << 20

// skillList accepts ["a","b"] or "a, b".
type skillList struct {
	items []string
	raw   string
}

func (s *skillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		s.raw, s.items = raw, validation.ParseSkills(raw)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("skills must be a list or a comma-separated string")
	}
	s.items = items
	s.raw = strings.Join(items, ", ")
	return nil
}

// record converts the request into a pipeline record. Empty optional fields
// become nil.
func (req ResumeRequest) record() types.ResumeRecord {
	return types.ResumeRecord{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		Education:      req.Education,
		Experience:     req.Experience,
		Skills:         req.Skills.items,
		SkillsRaw:      req.Skills.raw,
		Summary:        optional(req.Summary),
		Projects:       optional(req.Projects),
		Certifications: optional(req.Certifications),
		JobDescription: optional(req.JobDescription),
	}
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func (s *Server) createResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.create_resume")
	defer span.End()

	rec, err := s.decodeRecord(r)
	if err != nil {
		s.writeError(w, r, span, err)
		return
	}

	result, err := s.Pipeline.Build(ctx, rec)
	if err != nil {
		s.writeError(w, r, span, err)
		return
	}

	span.SetAttributes(
		attribute.String("build.timestamp", result.Manifest.Timestamp),
		attribute.Int("analysis.score", result.Analysis.Score),
	)
	writeJSON(w, http.StatusOK, CreateResponse{
		Success:   true,
		Message:   "Resume created successfully",
		Timestamp: result.Manifest.Timestamp,
		Analysis:  result.Analysis,
	})
}

func (s *Server) analyzeResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.analyze_resume")
	defer span.End()

	var req ResumeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, r, span, err)
		return
	}

	report, err := s.Pipeline.Analyze(ctx, req.record())
	if err != nil {
		s.writeError(w, r, span, err)
		return
	}

	span.SetAttributes(attribute.Int("analysis.score", report.Score))
	writeJSON(w, http.StatusOK, AnalyzeResponse{Success: true, Analysis: report})
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer().Start(r.Context(), "api.download")
	defer span.End()

	ts, kind := r.PathValue("timestamp"), r.PathValue("file_type")
	span.SetAttributes(attribute.String("download.file_type", kind))

	path, contentType, err := export.ResolveDownload(s.OutputDir, ts, kind)
	if err != nil {
		s.writeError(w, r, span, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.writeError(w, r, span, errors.NewIOError(errors.ErrCodeArtifactNotFound, "File not found", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.writeError(w, r, span, errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read artifact", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(path),
	}))
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

// decodeRecord reads a create request from JSON, multipart or urlencoded form.
func (s *Server) decodeRecord(r *http.Request) (types.ResumeRecord, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var req ResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			return types.ResumeRecord{}, err
		}
		return req.record(), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(defaultMultipartMemory); err != nil {
			return types.ResumeRecord{}, bodyError(err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return types.ResumeRecord{}, bodyError(err)
		}
	}

	skills := r.FormValue("skills")
	req := ResumeRequest{
		Name:           r.FormValue("name"),
		Email:          r.FormValue("email"),
		Phone:          r.FormValue("phone"),
		JobTitle:       r.FormValue("job_title"),
		Company:        r.FormValue("company"),
		Education:      r.FormValue("education"),
		Experience:     r.FormValue("experience"),
		Skills:         skillList{items: validation.ParseSkills(skills), raw: skills},
		Summary:        r.FormValue("summary"),
		Projects:       r.FormValue("projects"),
		Certifications: r.FormValue("certifications"),
		JobDescription: r.FormValue("job_description"),
	}
	return req.record(), nil
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Content-Type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyError(err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid JSON body: "+err.Error(), err)
	}
	return nil
}

func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Failed to read request body", err)
}

// writeError maps err onto the public error contract. Only validation
// messages reach the client; everything else is logged and generalized.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	status, body := classifyError(err)
	span.SetAttributes(attribute.String("error.type", body.ErrorType), attribute.Int("http.status", status))

	logArgs := []any{"endpoint", r.URL.Path, "status", status, "request_id", requestID(r.Context())}
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", logArgs...)
	} else {
		s.Logger.Info("Request rejected", append(logArgs, "code", errors.CodeOf(err))...)
	}
	writeErrorResponse(w, status, body)
}

func classifyError(err error) (int, ErrorResponse) {
	appErr, _ := errors.AsAppError(err)

	switch {
	case errors.IsValidationError(err):
		return http.StatusBadRequest, ErrorResponse{
			Message:   appErr.Message,
			ErrorType: string(errors.ErrorTypeValidation),
			Field:     appErr.Field,
		}
	case errors.CodeOf(err) == errors.ErrCodePathEscape:
		return http.StatusForbidden, ErrorResponse{Message: "Access denied", ErrorType: "forbidden"}
	case errors.CodeOf(err) == errors.ErrCodeArtifactNotFound:
		return http.StatusNotFound, ErrorResponse{Message: "File not found", ErrorType: "not_found"}
	case errors.IsFileGenerationError(err):
		return http.StatusInternalServerError, ErrorResponse{
			Message:   "Failed to generate resume files",
			ErrorType: string(errors.ErrorTypeFileGeneration),
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Message:   "An unexpected error occurred",
			ErrorType: string(errors.ErrorTypeInternal),
		}
	}
}

func (s *Server) tracer() trace.Tracer {
	if s.Observability != nil {
		return s.Observability.Tracer("resumebuilder.api")
	}
	return noop.NewTracerProvider().Tracer("resumebuilder.api")
}
