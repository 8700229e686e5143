package config

import (
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "RESUMEBUILDER"

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	setAIDefaults(v)
	setServerDefaults(v)
	setPipelineDefaults(v)
	setStorageDefaults(v)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.keyRefreshInterval", "0s")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	setObservabilityDefaults(v)
}

func setAIDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxOutputTokens", 500)
	v.SetDefault("ai.useSystemPrompts", true)

	// Experience enhancement: short bullet rewrite
	v.SetDefault("ai.enhance.provider", "gemini")
	v.SetDefault("ai.enhance.model", "")
	v.SetDefault("ai.enhance.timeout", 45*time.Second)
	v.SetDefault("ai.enhance.apiKey", "")
	v.SetDefault("ai.enhance.maxRetries", 2)
	v.SetDefault("ai.enhance.temperature", 0.7)
	v.SetDefault("ai.enhance.maxOutputTokens", 300)
	v.SetDefault("ai.enhance.useSystemPrompts", true)

	// Cover letter generation
	v.SetDefault("ai.coverLetter.provider", "gemini")
	v.SetDefault("ai.coverLetter.model", "")
	v.SetDefault("ai.coverLetter.timeout", 60*time.Second)
	v.SetDefault("ai.coverLetter.apiKey", "")
	v.SetDefault("ai.coverLetter.maxRetries", 2)
	v.SetDefault("ai.coverLetter.temperature", 0.7)
	v.SetDefault("ai.coverLetter.maxOutputTokens", 500)
	v.SetDefault("ai.coverLetter.useSystemPrompts", true)

	for _, op := range []string{"enhance", "coverLetter"} {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // builds include AI calls and PDF rendering
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 16*1024*1024)
	v.SetDefault("server.apiKeys", []string{})

	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 30)
	v.SetDefault("server.rateLimit.burstCapacity", 5)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)
}

func setPipelineDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.maxFieldLength", 10000)
	v.SetDefault("pipeline.minExperienceWords", 50)
	v.SetDefault("pipeline.maxExperienceWords", 1000)
	v.SetDefault("pipeline.maxSkills", 20)
	v.SetDefault("pipeline.atsFriendlyThreshold", 70)
	v.SetDefault("pipeline.outputDir", "output")
	v.SetDefault("pipeline.timestampRetries", 5)
	v.SetDefault("pipeline.chromePath", "")
	v.SetDefault("pipeline.renderTimeout", 60*time.Second)
	v.SetDefault("pipeline.validateSchema", true)
	v.SetDefault("pipeline.templateFile", "")
	v.SetDefault("pipeline.watchTemplate", false)
}

func setStorageDefaults(v *viper.Viper) {
	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "resumes")

	v.SetDefault("storage.postgres.enabled", false)
	v.SetDefault("storage.postgres.databaseURL", "")
	v.SetDefault("storage.postgres.migrate", true)
	v.SetDefault("storage.postgres.maxOpenConns", 10)
	v.SetDefault("storage.postgres.maxIdleConns", 5)
	v.SetDefault("storage.postgres.connMaxLifetime", time.Hour)
	v.SetDefault("storage.postgres.pingTimeout", 5*time.Second)
}

func setObservabilityDefaults(v *viper.Viper) {
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumebuilder")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.pipeline.enabled", true)
	v.SetDefault("observability.customMetrics.pipeline.trackStages", true)
	v.SetDefault("observability.customMetrics.pipeline.trackScores", true)
	v.SetDefault("observability.customMetrics.pipeline.trackFallbacks", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
