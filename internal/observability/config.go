package observability

import (
	"resumebuilder/internal/config"
)

// SettingsFromConfig flattens the observability section of cfg. version is used
// when no service version is configured.
func SettingsFromConfig(cfg *config.Config, version string) Settings {
	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	sampleRate := obs.SampleRate
	if obs.Tracing.SampleRate > 0 {
		sampleRate = obs.Tracing.SampleRate
	}

	return Settings{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput || obs.Console.Enabled,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         sampleRate,
		CollectionInterval: obs.Metrics.CollectionInterval,
		Prometheus: PrometheusSettings{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP:          obs.OTLP,
		CustomMetrics: obs.CustomMetrics,
	}
}
