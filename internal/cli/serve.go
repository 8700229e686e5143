package cli

import (
	"context"
	"fmt"
	"time"

	"resumebuilder/internal/builder"
	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/server"

	"github.com/spf13/cobra"
)

const observabilityShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the resume pipeline.

Available endpoints:
- POST /create_resume: Build a resume from form, multipart or JSON input
- POST /analyze_resume: Analyze a JSON resume without exporting artifacts
- GET /download/{timestamp}/{file_type}: Download a generated artifact
- GET /health: Health check including language model availability
- GET /stats: Rate limiting, circuit breaker and API key refresh status

When Vault is enabled with vault.secrets.apiKeys and vault.keyRefreshInterval,
the API keys are re-read from Vault while serving.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return err
	}

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	obs, err := observability.NewManager(observability.SettingsFromConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	rt, err := builder.NewRuntime(ctx, cfg, obs.Metrics(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.LogError(err, "Failed to release pipeline resources")
		}
	}()

	srv := server.NewServer(server.ServerConfigFrom(cfg, Version), server.Dependencies{
		Pipeline:      rt.Builder,
		Models:        rt.Enhancer,
		OutputDir:     rt.Exporter.OutputDir(),
		Observability: obs,
	}, logger)

	watcher, err := newAPIKeyWatcher(cfg, srv, logger)
	if err != nil {
		return err
	}
	srv.KeyWatcher = watcher

	return srv.Start(ctx)
}

// newAPIKeyWatcher returns nil unless Vault holds the API keys and a refresh
// interval is configured.
func newAPIKeyWatcher(cfg *config.Config, srv *server.Server, logger *errors.Logger) (*server.APIKeyWatcher, error) {
	v := cfg.Vault
	if !v.Enabled || v.Secrets.APIKeys == "" || v.KeyRefreshInterval <= 0 {
		return nil, nil
	}

	client, err := config.NewVaultClient(v, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault client for API key refresh: %w", err)
	}
	if client == nil {
		return nil, nil
	}
	return server.NewAPIKeyWatcher(client, v.Secrets.APIKeys, v.KeyRefreshInterval, srv.SetAPIKeys, logger), nil
}
