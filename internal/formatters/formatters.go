package formatters

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"resumebuilder/internal/types"
)

const (
	typeBuildResult    = "BuildResult"
	typeAnalysisReport = "AnalysisReport"
	typeBuildHistory   = "BuildHistory"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", typeBuildResult, &BuildTextFormatter{})
	registry.RegisterFormatter("markdown", typeBuildResult, &BuildMarkdownFormatter{})
	registry.RegisterFormatter("text", typeAnalysisReport, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", typeAnalysisReport, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", typeBuildHistory, &HistoryTextFormatter{})
	registry.RegisterFormatter("markdown", typeBuildHistory, &HistoryMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	return slices.Sorted(maps.Keys(fr.formatters))
}

func getDataType(data any) string {
	switch data.(type) {
	case types.BuildResult:
		return typeBuildResult
	case types.AnalysisReport:
		return typeAnalysisReport
	case []types.BuildRecord:
		return typeBuildHistory
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// BuildTextFormatter prints the artifact manifest followed by the analysis.
type BuildTextFormatter struct{}

func (btf *BuildTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BuildResult)
	if !ok {
		return "", fmt.Errorf("expected BuildResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME BUILD ===\n")
	output.WriteString(fmt.Sprintf("Candidate: %s\n", result.Resume.Name))
	output.WriteString(fmt.Sprintf("Target: %s at %s\n", result.Resume.JobTitle, result.Resume.Company))
	output.WriteString(fmt.Sprintf("Timestamp: %s\n", result.Manifest.Timestamp))
	output.WriteString(fmt.Sprintf("Experience enhanced: %s\n\n", yesNo(result.Resume.ExperienceEnhanced)))

	output.WriteString("=== ARTIFACTS ===\n")
	for _, artifact := range manifestRows(result.Manifest) {
		output.WriteString(fmt.Sprintf("%-13s %s\n", artifact[0]+":", artifact[1]))
	}
	output.WriteString("\n")

	writeAnalysisText(&output, result.Analysis)
	return output.String(), nil
}

func (btf *BuildTextFormatter) SupportedType() string {
	return typeBuildResult
}

// BuildMarkdownFormatter renders a build result as markdown.
type BuildMarkdownFormatter struct{}

func (bmf *BuildMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BuildResult)
	if !ok {
		return "", fmt.Errorf("expected BuildResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Resume Build %s\n\n", result.Manifest.Timestamp))
	output.WriteString(fmt.Sprintf("**Candidate:** %s  \n", result.Resume.Name))
	output.WriteString(fmt.Sprintf("**Target:** %s at %s  \n", result.Resume.JobTitle, result.Resume.Company))
	output.WriteString(fmt.Sprintf("**Experience enhanced:** %s\n\n", yesNo(result.Resume.ExperienceEnhanced)))

	output.WriteString("## Artifacts\n\n")
	output.WriteString("| Artifact | Path |\n|---|---|\n")
	for _, artifact := range manifestRows(result.Manifest) {
		output.WriteString(fmt.Sprintf("| %s | `%s` |\n", artifact[0], artifact[1]))
	}
	output.WriteString("\n")

	writeAnalysisMarkdown(&output, result.Analysis, "##")
	return output.String(), nil
}

func (bmf *BuildMarkdownFormatter) SupportedType() string {
	return typeBuildResult
}

// AnalysisTextFormatter handles text formatting for analysis reports
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder
	writeAnalysisText(&output, report)
	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return typeAnalysisReport
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis reports
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Analysis\n\n")
	writeAnalysisMarkdown(&output, report, "##")
	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return typeAnalysisReport
}

// HistoryTextFormatter lists recent builds, newest first.
type HistoryTextFormatter struct{}

func (htf *HistoryTextFormatter) Format(data any) (string, error) {
	records, ok := data.([]types.BuildRecord)
	if !ok {
		return "", fmt.Errorf("expected []BuildRecord, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== RECENT BUILDS ===\n")
	if len(records) == 0 {
		output.WriteString("No builds recorded.\n")
		return output.String(), nil
	}
	for _, rec := range records {
		output.WriteString(fmt.Sprintf("%s  %-24s %-24s %-20s score=%3d ats=%3d enhanced=%s\n",
			rec.Timestamp, rec.Name, rec.JobTitle, rec.Company, rec.Score, rec.ATSScore, yesNo(rec.ExperienceEnhanced)))
	}
	return output.String(), nil
}

func (htf *HistoryTextFormatter) SupportedType() string {
	return typeBuildHistory
}

// HistoryMarkdownFormatter renders recent builds as a markdown table.
type HistoryMarkdownFormatter struct{}

func (hmf *HistoryMarkdownFormatter) Format(data any) (string, error) {
	records, ok := data.([]types.BuildRecord)
	if !ok {
		return "", fmt.Errorf("expected []BuildRecord, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Recent Builds\n\n")
	if len(records) == 0 {
		output.WriteString("_No builds recorded._\n")
		return output.String(), nil
	}
	output.WriteString("| Timestamp | Name | Job Title | Company | Score | ATS | Enhanced |\n")
	output.WriteString("|---|---|---|---|---|---|---|\n")
	for _, rec := range records {
		output.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d | %s |\n",
			rec.Timestamp, rec.Name, rec.JobTitle, rec.Company, rec.Score, rec.ATSScore, yesNo(rec.ExperienceEnhanced)))
	}
	return output.String(), nil
}

func (hmf *HistoryMarkdownFormatter) SupportedType() string {
	return typeBuildHistory
}

func writeAnalysisText(output *strings.Builder, report types.AnalysisReport) {
	output.WriteString("=== RESUME ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n\n", report.Score))

	ats := report.ATSCompatibility
	output.WriteString("=== ATS COMPATIBILITY ===\n")
	output.WriteString(fmt.Sprintf("Score: %d/100 (%s)\n", ats.Score, atsVerdict(ats.IsATSFriendly)))
	for _, issue := range ats.Issues {
		output.WriteString(fmt.Sprintf("- %s\n", issue))
	}
	output.WriteString("\n")

	kw := report.KeywordAnalysis
	output.WriteString("=== KEYWORDS ===\n")
	output.WriteString(fmt.Sprintf("Total: %d, unique: %d, density: %.2f\n", kw.TotalKeywords, kw.UniqueKeywords, kw.KeywordDensity))
	if kw.JobMatchScore != nil {
		output.WriteString(fmt.Sprintf("Job match: %.1f%%\n", *kw.JobMatchScore))
	}
	if len(kw.TopKeywords) > 0 {
		output.WriteString(fmt.Sprintf("Top: %s\n", joinKeywords(kw.TopKeywords)))
	}
	output.WriteString("\n")

	r := report.Readability
	output.WriteString("=== READABILITY ===\n")
	output.WriteString(fmt.Sprintf("Flesch score: %.1f (%s)\n", r.FleschScore, r.Level))
	output.WriteString(fmt.Sprintf("Sentences: %d, words: %d, avg sentence length: %.1f\n\n",
		r.SentenceCount, r.WordCount, r.AvgSentenceLength))

	output.WriteString("=== IMPACT ===\n")
	output.WriteString(fmt.Sprintf("Impact score: %d/100\n", report.ImpactAnalysis.ImpactScore))
	for _, category := range slices.Sorted(maps.Keys(report.ImpactAnalysis.Counts)) {
		output.WriteString(fmt.Sprintf("%s: %d\n", category, report.ImpactAnalysis.Counts[category]))
	}
	output.WriteString(fmt.Sprintf("Action verbs used: %d\n\n", report.ActionVerbs.Count))

	if report.IndustryAlignment.BestIndustry != "" {
		output.WriteString("=== INDUSTRY ALIGNMENT ===\n")
		output.WriteString(fmt.Sprintf("Best match: %s (%.1f%%)\n\n",
			report.IndustryAlignment.BestIndustry,
			report.IndustryAlignment.Scores[report.IndustryAlignment.BestIndustry]))
	}

	if len(report.Feedback) > 0 {
		output.WriteString("=== FEEDBACK ===\n")
		for i, item := range report.Feedback {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
		}
		output.WriteString("\n")
	}

	if len(report.Degraded) > 0 {
		output.WriteString("Degraded sections: " + strings.Join(report.Degraded, ", ") + "\n")
	}
}

func writeAnalysisMarkdown(output *strings.Builder, report types.AnalysisReport, heading string) {
	sub := heading + "#"

	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", report.Score))

	ats := report.ATSCompatibility
	output.WriteString(heading + " ATS Compatibility\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100 (%s)\n\n", ats.Score, atsVerdict(ats.IsATSFriendly)))
	if len(ats.Issues) > 0 {
		output.WriteString(sub + " Issues\n")
		for _, issue := range ats.Issues {
			output.WriteString(fmt.Sprintf("- %s\n", issue))
		}
		output.WriteString("\n")
	}

	kw := report.KeywordAnalysis
	output.WriteString(heading + " Keywords\n\n")
	output.WriteString(fmt.Sprintf("- **Total:** %d\n- **Unique:** %d\n- **Density:** %.2f\n",
		kw.TotalKeywords, kw.UniqueKeywords, kw.KeywordDensity))
	if kw.JobMatchScore != nil {
		output.WriteString(fmt.Sprintf("- **Job match:** %.1f%%\n", *kw.JobMatchScore))
	}
	if len(kw.TopKeywords) > 0 {
		output.WriteString(fmt.Sprintf("- **Top:** %s\n", joinKeywords(kw.TopKeywords)))
	}
	output.WriteString("\n")

	r := report.Readability
	output.WriteString(heading + " Readability\n\n")
	output.WriteString(fmt.Sprintf("**Flesch score:** %.1f (%s)\n\n", r.FleschScore, r.Level))

	output.WriteString(heading + " Impact\n\n")
	output.WriteString(fmt.Sprintf("**Impact score:** %d/100\n\n", report.ImpactAnalysis.ImpactScore))
	if len(report.ActionVerbs.Used) > 0 {
		output.WriteString(fmt.Sprintf("**Action verbs:** %s\n\n", strings.Join(report.ActionVerbs.Used, ", ")))
	}

	if len(report.Feedback) > 0 {
		output.WriteString(heading + " Feedback\n\n")
		for i, item := range report.Feedback {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
		}
		output.WriteString("\n")
	}

	if len(report.Degraded) > 0 {
		output.WriteString(fmt.Sprintf("> Degraded sections: %s\n", strings.Join(report.Degraded, ", ")))
	}
}

func manifestRows(m types.ArtifactManifest) [][2]string {
	return [][2]string{
		{"JSON", m.JSON},
		{"HTML", m.HTML},
		{"PDF", m.PDF},
		{"Cover letter", m.CoverLetter},
		{"Analysis", m.Analysis},
	}
}

func joinKeywords(keywords []types.KeywordCount) string {
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		parts = append(parts, fmt.Sprintf("%s (%d)", kw.Keyword, kw.Count))
	}
	return strings.Join(parts, ", ")
}

func atsVerdict(friendly bool) string {
	if friendly {
		return "ATS friendly"
	}
	return "needs work"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// GlobalRegistry is the registry used by the CLI output handler.
var GlobalRegistry = NewFormatterRegistry()
