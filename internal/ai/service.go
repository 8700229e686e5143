package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

const (
	// NoExperienceText replaces empty experience input.
	NoExperienceText = "No experience provided"
	// CoverLetterErrorPrefix starts every degraded cover letter.
	CoverLetterErrorPrefix = "Error generating cover letter: "

	reasonNotConfigured = "AI service not configured"
)

// Recorder receives per-call AI metrics. It may be nil.
type Recorder interface {
	RecordAIOperation(ctx context.Context, operation string, duration time.Duration, inputTokens, outputTokens int64, err error)
}

// Prompts is the resolved system prompt and user template for one operation.
type Prompts struct {
	System string
	User   string
}

// Enhancer runs the two language model transforms of the pipeline. Neither
// method returns an error: failures degrade to a documented fallback value.
type Enhancer struct {
	enhance            TextGenerator
	coverLetter        TextGenerator
	enhancePrompts     Prompts
	coverLetterPrompts Prompts
	recorder           Recorder
	logger             *errors.Logger
}

// NewEnhancer wires generators and prompts directly. A nil generator disables
// that operation; calls then return the fallback.
func NewEnhancer(enhance, coverLetter TextGenerator, enhancePrompts, coverLetterPrompts Prompts, logger *errors.Logger) *Enhancer {
	return &Enhancer{
		enhance:            enhance,
		coverLetter:        coverLetter,
		enhancePrompts:     withDefaults(enhancePrompts, DefaultSystemPrompts.EnhanceExperience, DefaultUserPrompts.EnhanceExperience),
		coverLetterPrompts: withDefaults(coverLetterPrompts, DefaultSystemPrompts.CoverLetter, DefaultUserPrompts.CoverLetter),
		logger:             logger,
	}
}

// NewEnhancerFromConfig builds Gemini-backed generators for both operations.
// An operation without an API key is left unconfigured, not treated as an error.
func NewEnhancerFromConfig(cfg *config.Config, logger *errors.Logger) (*Enhancer, error) {
	enhanceCfg := cfg.GetEnhanceConfig()
	coverCfg := cfg.GetCoverLetterConfig()

	enhanceGen, err := newGenerator(&enhanceCfg, config.OperationEnhance, logger)
	if err != nil {
		return nil, err
	}
	coverGen, err := newGenerator(&coverCfg, config.OperationCoverLetter, logger)
	if err != nil {
		return nil, err
	}

	enhanceLoaded := cfg.GetLoadedEnhancePrompts()
	coverLoaded := cfg.GetLoadedCoverLetterPrompts()

	return NewEnhancer(enhanceGen, coverGen,
		Prompts{
			System: resolvePrompt(enhanceLoaded.SystemPrompts.EnhanceExperience, enhanceCfg.CustomPrompts.SystemPrompts.EnhanceExperience, ""),
			User:   resolvePrompt(enhanceLoaded.UserPrompts.EnhanceExperience, enhanceCfg.CustomPrompts.UserPrompts.EnhanceExperience, ""),
		},
		Prompts{
			System: resolvePrompt(coverLoaded.SystemPrompts.CoverLetter, coverCfg.CustomPrompts.SystemPrompts.CoverLetter, ""),
			User:   resolvePrompt(coverLoaded.UserPrompts.CoverLetter, coverCfg.CustomPrompts.UserPrompts.CoverLetter, ""),
		},
		logger), nil
}

func newGenerator(cfg *config.OperationAIConfig, operation string, logger *errors.Logger) (TextGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("No AI API key configured, operation will use fallback output", "operation", operation)
		return nil, nil
	}

	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"operation", operation,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"max_output_tokens", *cfg.MaxOutputTokens,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	switch cfg.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(cfg, operation, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create AI provider", err)
		}
		return provider, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

func withDefaults(p Prompts, system, user string) Prompts {
	if p.System == "" {
		p.System = system
	}
	if p.User == "" {
		p.User = user
	}
	return p
}

// SetRecorder attaches a metrics recorder.
func (e *Enhancer) SetRecorder(r Recorder) {
	e.recorder = r
}

// Configured reports whether each operation has a generator.
func (e *Enhancer) Configured() (enhance, coverLetter bool) {
	return e.enhance != nil, e.coverLetter != nil
}

// EnhanceExperience rewrites experience text into polished bullets. On any
// failure the original text is returned as a degraded result.
func (e *Enhancer) EnhanceExperience(ctx context.Context, text string) types.Result[string] {
	if strings.TrimSpace(text) == "" {
		return types.Degraded(NoExperienceText, "empty experience")
	}
	if e.enhance == nil {
		return types.Degraded(text, reasonNotConfigured)
	}

	prompt, err := renderPrompt(config.OperationEnhance, e.enhancePrompts.User, EnhanceData{Text: text})
	if err != nil {
		e.logger.LogError(err, "Enhancement prompt failed, keeping original experience")
		return types.Degraded(text, err.Error())
	}

	out, err := e.generate(ctx, config.OperationEnhance, e.enhance, e.enhancePrompts.System, prompt)
	if err != nil {
		e.logger.Warn("Experience enhancement failed, keeping original text", "error", err.Error())
		return types.Degraded(text, err.Error())
	}
	return types.Real(out)
}

// GenerateCoverLetter writes a cover letter for resume. On failure the value is
// an "Error generating cover letter: ..." message.
func (e *Enhancer) GenerateCoverLetter(ctx context.Context, resume types.FormattedResume) types.Result[string] {
	if e.coverLetter == nil {
		return types.Degraded(CoverLetterErrorPrefix+reasonNotConfigured, reasonNotConfigured)
	}

	data := CoverLetterData{
		Name:       resume.Name,
		Email:      resume.Email,
		Phone:      resume.Phone,
		JobTitle:   resume.JobTitle,
		Company:    resume.Company,
		Education:  resume.Education,
		Experience: resume.Experience,
		Skills:     strings.Join(resume.Skills, ", "),
	}
	prompt, err := renderPrompt(config.OperationCoverLetter, e.coverLetterPrompts.User, data)
	if err != nil {
		e.logger.LogError(err, "Cover letter prompt failed")
		return types.Degraded(CoverLetterErrorPrefix+err.Error(), err.Error())
	}

	out, err := e.generate(ctx, config.OperationCoverLetter, e.coverLetter, e.coverLetterPrompts.System, prompt)
	if err != nil {
		e.logger.Warn("Cover letter generation failed", "error", err.Error())
		return types.Degraded(CoverLetterErrorPrefix+err.Error(), err.Error())
	}
	return types.Real(out)
}

func (e *Enhancer) generate(ctx context.Context, operation string, gen TextGenerator, system, prompt string) (string, error) {
	start := time.Now()
	out, usage, err := gen.Generate(ctx, GenerationRequest{SystemPrompt: system, Prompt: prompt})
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.NewAIError(errors.ErrCodeAIEmptyResponse, "Model returned no text", nil)
	}
	if err != nil && stderrors.Is(err, context.DeadlineExceeded) {
		err = errors.NewAIError(errors.ErrCodeAITimeout, "AI request timed out", err)
	}

	if e.recorder != nil {
		var in, outTokens int64
		if usage != nil {
			in, outTokens = usage.InputTokens, usage.OutputTokens
		}
		e.recorder.RecordAIOperation(ctx, operation, time.Since(start), in, outTokens, err)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Health reports model availability per configured operation.
func (e *Enhancer) Health(ctx context.Context) map[string]*ModelInfo {
	health := make(map[string]*ModelInfo, 2)
	if e.enhance != nil {
		health[config.OperationEnhance] = e.enhance.GetModelInfo(ctx)
	}
	if e.coverLetter != nil {
		health[config.OperationCoverLetter] = e.coverLetter.GetModelInfo(ctx)
	}
	return health
}

// BreakerStats returns circuit breaker statistics for generators that expose them.
func (e *Enhancer) BreakerStats() map[string]any {
	type statser interface{ GetCircuitBreakerStats() map[string]any }

	stats := make(map[string]any, 2)
	if s, ok := e.enhance.(statser); ok {
		stats[config.OperationEnhance] = s.GetCircuitBreakerStats()
	}
	if s, ok := e.coverLetter.(statser); ok {
		stats[config.OperationCoverLetter] = s.GetCircuitBreakerStats()
	}
	return stats
}

// Close releases both generators.
func (e *Enhancer) Close() error {
	var errs []error
	for _, gen := range []TextGenerator{e.enhance, e.coverLetter} {
		if gen != nil {
			errs = append(errs, gen.Close())
		}
	}
	return stderrors.Join(errs...)
}
