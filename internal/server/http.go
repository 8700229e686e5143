package server

import (
	"context"
	"sync/atomic"
	"time"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/types"
)

// Pipeline is the resume builder as seen by the HTTP layer.
type Pipeline interface {
	Build(ctx context.Context, rec types.ResumeRecord) (types.BuildResult, error)
	Analyze(ctx context.Context, rec types.ResumeRecord) (types.AnalysisReport, error)
}

// ModelStatus reports language model health for /health and /stats.
type ModelStatus interface {
	Health(ctx context.Context) map[string]*ai.ModelInfo
	BreakerStats() map[string]any
}

// ResumeRequest is the JSON body accepted by /create_resume and /analyze_resume.
// Skills may be a list or a comma-separated string.
type ResumeRequest struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	JobTitle       string    `json:"job_title"`
	Company        string    `json:"company"`
	Education      string    `json:"education"`
	Experience     string    `json:"experience"`
	Skills         skillList `json:"skills"`
	Summary        string    `json:"summary"`
	Projects       string    `json:"projects"`
	Certifications string    `json:"certifications"`
	JobDescription string    `json:"job_description"`
}

// CreateResponse is returned by /create_resume on success.
type CreateResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Timestamp string               `json:"timestamp"`
	Analysis  types.AnalysisReport `json:"analysis"`
}

// AnalyzeResponse is returned by /analyze_resume on success.
type AnalyzeResponse struct {
	Success  bool                 `json:"success"`
	Analysis types.AnalysisReport `json:"analysis"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
	Field     string `json:"field,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// API Authentication
	apiKeys atomic.Pointer[map[string]bool]

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Pipeline      Pipeline
	Models        ModelStatus
	OutputDir     string
	Observability *observability.Manager
	KeyWatcher    *APIKeyWatcher

	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the collaborators the handlers call into.
type Dependencies struct {
	Pipeline      Pipeline
	Models        ModelStatus
	OutputDir     string
	Observability *observability.Manager
}

// ServerConfigFrom maps the server section of the application config.
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(cfg ServerConfig, deps Dependencies, logger *errors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Pipeline:       deps.Pipeline,
		Models:         deps.Models,
		OutputDir:      deps.OutputDir,
		Observability:  deps.Observability,
		Logger:         logger,
	}
	s.SetAPIKeys(cfg.APIKeys)
	return s
}

// SetAPIKeys replaces the accepted key set. Safe to call while serving.
func (s *Server) SetAPIKeys(keys []string) {
	// Convert API keys slice to map for O(1) lookup
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			set[key] = true
		}
	}
	s.apiKeys.Store(&set)
}

func (s *Server) keyCount() int {
	if set := s.apiKeys.Load(); set != nil {
		return len(*set)
	}
	return 0
}

func (s *Server) validKey(key string) bool {
	set := s.apiKeys.Load()
	return set != nil && (*set)[key]
}
