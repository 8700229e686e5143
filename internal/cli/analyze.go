package cli

import (
	"fmt"

	"resumebuilder/internal/analysis"
	"resumebuilder/internal/builder"
	"resumebuilder/internal/common"
	"resumebuilder/internal/formatting"
	"resumebuilder/internal/types"
	"resumebuilder/internal/validation"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [record.json|resume.txt|resume.pdf]",
	Short: "Score a resume without exporting artifacts",
	Long: `Analyze a resume and print its report: overall score, ATS compatibility,
keyword frequency and job match, readability, impact and action verbs,
industry alignment and improvement suggestions.

A .json file is read as a resume record. For .txt, .md and .pdf files the
extracted text is analyzed as the experience section and skills come from
--skills. No language model is called and nothing is written to the output
directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeConfig  common.CommandConfig
	analyzeOptions common.SourceOptions
)

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
	analyzeCmd.Flags().StringVar(&analyzeOptions.Skills, "skills", "", "Comma-separated skills (overrides the record)")
	analyzeCmd.Flags().StringVar(&analyzeOptions.JobDescriptionFile, "job-description", "", "Job description file used for keyword matching")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	pipeline := builder.New(builder.Options{
		Validator: validation.NewValidator(validation.LimitsFromConfig(cfg.Pipeline)),
		Formatter: formatting.New(logger),
		Analyzer:  analysis.New(cfg.Pipeline.ATSFriendlyThreshold, logger),
		Logger:    logger,
	})

	loadInput := func(fp *common.FileProcessor, args []string) (types.ResumeRecord, error) {
		return fp.LoadAnalysisSource(args[0], analyzeOptions)
	}

	logDetails := func(rec types.ResumeRecord, cmdConfig common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"source", args[0],
			"experience_chars", len(rec.Experience),
			"skills", len(rec.Skills),
			"has_job_description", rec.JobDescription != nil,
			"output_format", cmdConfig.OutputFormat)
	}

	if err := common.RunCommand(cmd.Context(), logger, analyzeConfig, args, loadInput, pipeline.Analyze, logDetails); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
