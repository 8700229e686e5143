package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecodeDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := decode(defaultViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, "output", cfg.Pipeline.OutputDir)
	assert.Equal(t, 50, cfg.Pipeline.MinExperienceWords)
	assert.Equal(t, 1000, cfg.Pipeline.MaxExperienceWords)
	assert.Equal(t, 20, cfg.Pipeline.MaxSkills)
	assert.Equal(t, 70, cfg.Pipeline.ATSFriendlyThreshold)
	assert.Equal(t, int64(16*1024*1024), cfg.Server.MaxRequestSize)
	assert.Empty(t, cfg.AI.APIKey, "a missing API key is not a configuration error")
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestGetEnhanceConfigAppliesFallbacks(t *testing.T) {
	cfg, err := decode(defaultViper(), "")
	require.NoError(t, err)
	cfg.AI.APIKey = "global-key"

	enhance := cfg.GetEnhanceConfig()
	require.NotNil(t, enhance.Temperature)
	require.NotNil(t, enhance.MaxOutputTokens)
	require.NotNil(t, enhance.Timeout)

	assert.Equal(t, "global-key", enhance.APIKey)
	assert.Equal(t, "gemini-2.0-flash", enhance.Model)
	assert.Equal(t, int32(300), *enhance.MaxOutputTokens)
	assert.Equal(t, 45*time.Second, *enhance.Timeout)

	cover := cfg.GetOperationConfig(OperationCoverLetter)
	require.NotNil(t, cover.MaxOutputTokens)
	assert.Equal(t, int32(500), *cover.MaxOutputTokens)
}

func TestGetCoverLetterConfigPromptFallback(t *testing.T) {
	cfg := &Config{AI: AIConfig{
		CustomPrompts: PromptConfig{UserPrompts: UserPrompts{CoverLetter: "global template"}},
	}}

	assert.Equal(t, "global template", cfg.GetCoverLetterConfig().CustomPrompts.UserPrompts.CoverLetter)

	cfg.AI.CoverLetter.CustomPrompts.UserPrompts.CoverLetter = "specific"
	assert.Equal(t, "specific", cfg.GetCoverLetterConfig().CustomPrompts.UserPrompts.CoverLetter)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "inverted experience band",
			mutate:  func(c *Config) { c.Pipeline.MinExperienceWords = 2000 },
			wantErr: "experience word band",
		},
		{
			name:    "zero max skills",
			mutate:  func(c *Config) { c.Pipeline.MaxSkills = 0 },
			wantErr: "maxSkills",
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Pipeline.OutputDir = "" },
			wantErr: "outputDir",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Storage.S3.Enabled = true },
			wantErr: "bucket",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Storage.Postgres.Enabled = true },
			wantErr: "databaseURL",
		},
		{
			name:    "unsupported default format",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: "invalid default format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := decode(defaultViper(), "")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestServerAPIKeysFromEnvironment(t *testing.T) {
	t.Setenv("RESUMEBUILDER_SERVER_APIKEYS", " a , b,, c ")

	cfg := &Config{}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}

func TestGeminiKeyEnvironmentFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg := &Config{}
	cfg.applyGeminiKeyFallback()
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}
