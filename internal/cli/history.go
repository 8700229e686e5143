package cli

import (
	"context"
	"database/sql"
	"fmt"

	"resumebuilder/internal/common"
	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/storage"

	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent builds from the history database",
	Long: `List the most recent resume builds recorded in Postgres, newest first.
Requires storage.postgres.enabled and storage.postgres.databaseURL.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyConfig common.CommandConfig
	historyLimit  int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply build history database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	addOutputFlags(historyCmd, &historyConfig)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", defaultHistoryLimit, "Number of builds to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	var history storage.HistoryStore = storage.DisabledHistory{}
	if cfg.Storage.Postgres.Enabled {
		db, err := openDatabase(cmd.Context(), cfg.Storage.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		history = storage.NewPGHistory(db)
	}

	records, err := history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list build history: %w", err)
	}
	logger.Debug("Loaded build history", "count", len(records))
	return common.NewOutputHandler(logger).HandleOutput(records, historyConfig)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Storage.Postgres.DatabaseURL == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"storage.postgres.databaseURL is required to run migrations", nil)
	}

	db, err := openDatabase(cmd.Context(), cfg.Storage.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.RunMigrations(cmd.Context(), db); err != nil {
		return errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to apply migrations", err)
	}
	logger.Info("Build history migrations applied")
	return nil
}

func openDatabase(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := storage.Connect(ctx, cfg.DatabaseURL, storage.OptionsFromConfig(cfg))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to connect to build history database", err)
	}
	return db, nil
}
