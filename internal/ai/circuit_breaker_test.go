package ai

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"resumebuilder/internal/config"
	appErrors "resumebuilder/internal/errors"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func int32Ptr(i int32) *int32                { return &i }
func boolPtr(b bool) *bool                   { return &b }

var testLogger = appErrors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)

func breakerConfig(enabled bool) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider:         "gemini",
		Model:            "gemini-2.0-flash",
		Timeout:          timePtr(time.Second),
		MaxRetries:       intPtr(0),
		Temperature:      float32Ptr(0.7),
		MaxOutputTokens:  int32Ptr(512),
		UseSystemPrompts: boolPtr(true),
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          enabled,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}
}

func TestCircuitBreakerDisabledIsPassthrough(t *testing.T) {
	cb := NewAICircuitBreaker(config.OperationEnhance, breakerConfig(false), testLogger)
	require.Nil(t, cb)

	calls := 0
	for range 10 {
		_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
			calls++
			return nil, errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
	}
	assert.Equal(t, 10, calls)
	assert.True(t, cb.IsHealthy())
	assert.Equal(t, map[string]any{"enabled": false}, cb.GetStats())
}

func TestCircuitBreakerTripsAfterFailures(t *testing.T) {
	for _, op := range []string{config.OperationEnhance, config.OperationCoverLetter} {
		t.Run(op, func(t *testing.T) {
			cb := NewAICircuitBreaker(op, breakerConfig(true), testLogger)
			require.NotNil(t, cb)

			fail := func() (*genai.GenerateContentResponse, error) {
				return nil, errors.New("upstream unavailable")
			}
			for range 3 {
				_, err := cb.Execute(fail)
				require.Error(t, err)
			}

			assert.False(t, cb.IsHealthy())

			calls := 0
			_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
				calls++
				return &genai.GenerateContentResponse{}, nil
			})
			assert.ErrorIs(t, err, gobreaker.ErrOpenState)
			assert.Zero(t, calls, "open breaker must not call through")

			stats := cb.GetStats()
			assert.Equal(t, "AI-"+op, stats["name"])
			assert.Equal(t, "open", stats["state"])
		})
	}
}

func TestCircuitBreakerStaysClosedBelowMinRequests(t *testing.T) {
	cb := NewAICircuitBreaker(config.OperationEnhance, breakerConfig(true), testLogger)

	for range 2 {
		_, _ = cb.Execute(func() (*genai.GenerateContentResponse, error) {
			return nil, errors.New("flaky")
		})
	}
	assert.True(t, cb.IsHealthy())
}

func TestModelCircuitBreaker(t *testing.T) {
	assert.Nil(t, NewModelCircuitBreaker(config.OperationEnhance, breakerConfig(false), testLogger))

	mcb := NewModelCircuitBreaker(config.OperationEnhance, breakerConfig(true), testLogger)
	require.NotNil(t, mcb)

	for range 5 {
		_, err := mcb.ExecuteModel(func() (*genai.Model, error) {
			return nil, errors.New("not found")
		})
		require.Error(t, err)
	}
	assert.False(t, mcb.IsModelHealthy())
	assert.Equal(t, "AI-Model-enhance", mcb.GetModelStats()["name"])
}
