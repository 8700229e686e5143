package ai

import (
	"fmt"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// AICircuitBreaker guards content generation for one operation
type AICircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
}

// ModelCircuitBreaker guards model info lookups
type ModelCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.Model]
}

func breakerSettings(name, operation string, cfg config.CircuitBreakerConfig, logger *errors.Logger,
	readyToTrip func(gobreaker.Counts) bool) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation", operation,
				"from", from.String(),
				"to", to.String())
		},
	}
}

// NewAICircuitBreaker returns nil when the breaker is disabled for the operation
func NewAICircuitBreaker(operation string, cfg *config.OperationAIConfig, logger *errors.Logger) *AICircuitBreaker {
	cbCfg := cfg.CircuitBreaker
	if !cbCfg.Enabled {
		return nil
	}

	settings := breakerSettings(fmt.Sprintf("AI-%s", operation), operation, cbCfg, logger,
		func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cbCfg.MinRequests && failureRatio >= cbCfg.FailureThreshold
		})
	return &AICircuitBreaker{cb: gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](settings)}
}

// NewModelCircuitBreaker returns nil when the breaker is disabled for the operation
func NewModelCircuitBreaker(operation string, cfg *config.OperationAIConfig, logger *errors.Logger) *ModelCircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	// Model lookups only feed health checks, so they trip later.
	settings := breakerSettings(fmt.Sprintf("AI-Model-%s", operation), operation, cfg.CircuitBreaker, logger,
		func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.8
		})
	return &ModelCircuitBreaker{cb: gobreaker.NewCircuitBreaker[*genai.Model](settings)}
}

// Execute runs fn behind the breaker, or directly when the breaker is disabled
func (cb *AICircuitBreaker) Execute(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// ExecuteModel runs fn behind the model breaker, or directly when it is disabled
func (cb *ModelCircuitBreaker) ExecuteModel(fn func() (*genai.Model, error)) (*genai.Model, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

func breakerStats[T any](cb *gobreaker.CircuitBreaker[T]) map[string]any {
	if cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    cb.Name(),
		"state":   cb.State().String(),
		"counts":  cb.Counts(),
		"enabled": true,
	}
}

// GetStats returns circuit breaker statistics
func (cb *AICircuitBreaker) GetStats() map[string]any {
	if cb == nil {
		return breakerStats[*genai.GenerateContentResponse](nil)
	}
	return breakerStats(cb.cb)
}

// GetModelStats returns model circuit breaker statistics
func (cb *ModelCircuitBreaker) GetModelStats() map[string]any {
	if cb == nil {
		return breakerStats[*genai.Model](nil)
	}
	return breakerStats(cb.cb)
}

// IsHealthy reports whether the breaker is closed. A disabled breaker is healthy.
func (cb *AICircuitBreaker) IsHealthy() bool {
	return cb == nil || cb.cb == nil || cb.cb.State() == gobreaker.StateClosed
}

// IsModelHealthy reports whether the model breaker is closed. A disabled breaker is healthy.
func (cb *ModelCircuitBreaker) IsModelHealthy() bool {
	return cb == nil || cb.cb == nil || cb.cb.State() == gobreaker.StateClosed
}
