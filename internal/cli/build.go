package cli

import (
	"context"
	"fmt"

	"resumebuilder/internal/builder"
	"resumebuilder/internal/common"
	"resumebuilder/internal/types"
	"resumebuilder/internal/utils"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [record-file]",
	Short: "Build resume artifacts from a JSON record",
	Long: `Run the full pipeline on a JSON resume record: sanitize, validate, format,
enhance the experience section, draft a cover letter, analyze, and export
JSON, HTML, PDF, cover letter and analysis files to the output directory.

Without a configured model API key the experience is kept as formatted and
the cover letter falls back to a placeholder; the build still succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var (
	buildConfig         common.CommandConfig
	buildJobDescription string
)

func init() {
	addOutputFlags(buildCmd, &buildConfig)
	buildCmd.Flags().StringVar(&buildJobDescription, "job-description", "", "Job description file used for keyword matching")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	rt, err := builder.NewRuntime(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.LogError(err, "Failed to release pipeline resources")
		}
	}()

	loadInput := func(fp *common.FileProcessor, args []string) (types.ResumeRecord, error) {
		return fp.LoadRecord(args[0], common.SourceOptions{JobDescriptionFile: buildJobDescription})
	}

	logDetails := func(rec types.ResumeRecord, cmdConfig common.CommandConfig) {
		logger.Info("Starting resume build",
			"record", args[0],
			"experience_chars", len(rec.Experience),
			"skills", len(rec.Skills),
			"has_job_description", rec.JobDescription != nil,
			"output_format", cmdConfig.OutputFormat)
	}

	build := func(ctx context.Context, rec types.ResumeRecord) (types.BuildResult, error) {
		result, err := rt.Builder.Build(ctx, rec)
		if err != nil {
			return types.BuildResult{}, err
		}
		logger.Info("Artifacts written",
			"timestamp", result.Manifest.Timestamp,
			"sizes", utils.ArtifactSizes(result.Manifest.Paths()))
		return result, nil
	}

	if err := common.RunCommand(cmd.Context(), logger, buildConfig, args, loadInput, build, logDetails); err != nil {
		return fmt.Errorf("failed to build resume: %w", err)
	}
	logger.Info("Resume build completed successfully")
	return nil
}
