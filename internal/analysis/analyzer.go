// Package analysis scores a formatted resume with text heuristics.
package analysis

import (
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

// DefaultATSFriendlyThreshold is the ATS score at or above which a resume is considered parse friendly.
const DefaultATSFriendlyThreshold = 70

// Sub-analysis names, as reported in AnalysisReport.Degraded.
const (
	StageKeywords    = "keyword_analysis"
	StageContent     = "content_score"
	StageReadability = "readability"
	StageATS         = "ats_compatibility"
	StageImpact      = "impact_analysis"
	StageVerbs       = "action_verbs"
	StageIndustry    = "industry_alignment"
	StageFeedback    = "feedback"
)

var errNoText = stderrors.New("no text to analyze")

// Analyzer computes an AnalysisReport. It never calls out of process.
type Analyzer struct {
	atsThreshold int
	logger       *errors.Logger
}

// New creates an analyzer. A non-positive threshold selects the default.
func New(atsThreshold int, logger *errors.Logger) *Analyzer {
	if atsThreshold <= 0 {
		atsThreshold = DefaultATSFriendlyThreshold
	}
	return &Analyzer{atsThreshold: atsThreshold, logger: logger}
}

// Analyze runs every sub-analysis over resume. A sub-analysis that fails is
// replaced by its zero default and named in the report's Degraded list, so the
// report is always well formed.
func (a *Analyzer) Analyze(resume types.FormattedResume, jobDescription string) types.AnalysisReport {
	a.logger.Debug("Analyzing resume", "skills", len(resume.Skills), "has_job_description", jobDescription != "")

	report := types.AnalysisReport{}

	report.KeywordAnalysis = safe(a, &report, StageKeywords, emptyKeywordAnalysis(), func() (types.KeywordAnalysis, error) {
		return AnalyzeKeywords(keywordSource(resume), jobDescription), nil
	})
	report.Score = safe(a, &report, StageContent, 0, func() (int, error) {
		return ContentScore(resume, report.KeywordAnalysis.UniqueKeywords), nil
	})
	report.Readability = safe(a, &report, StageReadability, types.Readability{Level: LevelUnknown}, func() (types.Readability, error) {
		return AnalyzeReadability(resume.Experience)
	})
	report.ATSCompatibility = safe(a, &report, StageATS, types.ATSCompatibility{Issues: []string{}}, func() (types.ATSCompatibility, error) {
		return CheckATS(resume, a.atsThreshold), nil
	})
	report.ImpactAnalysis = safe(a, &report, StageImpact, emptyImpact(), func() (types.ImpactAnalysis, error) {
		return AnalyzeImpact(resume.Experience), nil
	})
	report.ActionVerbs = safe(a, &report, StageVerbs, types.ActionVerbs{Used: []string{}}, func() (types.ActionVerbs, error) {
		return AnalyzeActionVerbs(resume.Experience), nil
	})
	report.IndustryAlignment = safe(a, &report, StageIndustry, types.IndustryAlignment{Scores: map[string]float64{}}, func() (types.IndustryAlignment, error) {
		return AnalyzeIndustryAlignment(industrySource(resume)), nil
	})
	report.Feedback = safe(a, &report, StageFeedback, []string{}, func() ([]string, error) {
		return buildFeedback(resume, report), nil
	})

	return report
}

// safe runs one sub-analysis, recovering from panics. On failure it records
// name as degraded and returns def.
func safe[T any](a *Analyzer, report *types.AnalysisReport, name string, def T, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("Sub-analysis failed, using default", "analysis", name, "panic", fmt.Sprint(r))
			report.Degraded = append(report.Degraded, name)
			result = def
		}
	}()

	value, err := fn()
	if err != nil {
		a.logger.Warn("Sub-analysis degraded, using default", "analysis", name, "reason", err.Error())
		report.Degraded = append(report.Degraded, name)
		return def
	}
	return value
}

func keywordSource(resume types.FormattedResume) string {
	return resume.Experience + "\n" + strings.Join(resume.Skills, " ")
}

func industrySource(resume types.FormattedResume) string {
	parts := []string{resume.JobTitle, resume.Experience, strings.Join(resume.Skills, " ")}
	if resume.Summary != nil {
		parts = append(parts, *resume.Summary)
	}
	return strings.Join(parts, "\n")
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
