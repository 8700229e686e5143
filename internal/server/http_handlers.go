package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const healthCheckTimeout = 10 * time.Second

// healthHandler reports service status including language model availability.
// Unconfigured models are not an outage: the pipeline degrades without them.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumebuilder",
		"version": s.Version,
	}

	status := http.StatusOK
	if s.Models != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		models := s.Models.Health(ctx)
		response["ai_models"] = models
		for _, info := range models {
			if info != nil && !info.Available {
				response["status"] = "degraded"
				status = http.StatusServiceUnavailable
				break
			}
		}
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumebuilder",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    s.keyCount(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.Models != nil {
		response["circuit_breakers"] = s.Models.BreakerStats()
	}
	if s.KeyWatcher != nil {
		response["api_key_refresh"] = s.KeyWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, status int, body ErrorResponse) {
	body.Success = false
	writeJSON(w, status, body)
}
