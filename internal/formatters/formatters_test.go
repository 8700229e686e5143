package formatters

import (
	"encoding/json"
	"testing"
	"time"

	"resumebuilder/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() types.AnalysisReport {
	match := 62.5
	return types.AnalysisReport{
		Score:    74,
		Feedback: []string{"Add more quantifiable achievements", "Use more action verbs"},
		KeywordAnalysis: types.KeywordAnalysis{
			TopKeywords:    []types.KeywordCount{{Keyword: "kubernetes", Count: 4}, {Keyword: "golang", Count: 3}},
			KeywordDensity: 0.12,
			TotalKeywords:  80,
			UniqueKeywords: 41,
			JobMatchScore:  &match,
		},
		ATSCompatibility: types.ATSCompatibility{
			Score:         85,
			Issues:        []string{"Skills list uses mixed delimiters"},
			IsATSFriendly: true,
		},
		IndustryAlignment: types.IndustryAlignment{
			Scores:       map[string]float64{"technology": 40},
			BestIndustry: "technology",
		},
		Readability:    types.Readability{FleschScore: 48.2, Level: "Difficult", SentenceCount: 6, WordCount: 90},
		ImpactAnalysis: types.ImpactAnalysis{Counts: map[string]int{"quantitative": 2}, ImpactScore: 40},
		ActionVerbs:    types.ActionVerbs{Used: []string{"led", "built"}, Count: 2},
		Degraded:       []string{"readability"},
	}
}

func sampleBuild() types.BuildResult {
	return types.BuildResult{
		Manifest: types.ArtifactManifest{
			Timestamp:   "20240315_143005",
			JSON:        "output/resume_20240315_143005.json",
			HTML:        "output/resume_20240315_143005.html",
			PDF:         "output/resume_20240315_143005.pdf",
			CoverLetter: "output/cover_letter_20240315_143005.txt",
			Analysis:    "output/analysis_20240315_143005.json",
		},
		Resume: types.FormattedResume{
			Name:               "Jane Doe",
			JobTitle:           "Platform Engineer",
			Company:            "Acme",
			ExperienceEnhanced: true,
		},
		Analysis: sampleReport(),
	}
}

func TestRegistryDispatch(t *testing.T) {
	registry := NewFormatterRegistry()

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{
			name:     "build text",
			data:     sampleBuild(),
			format:   "text",
			contains: []string{"=== RESUME BUILD ===", "Timestamp: 20240315_143005", "Experience enhanced: yes", "Cover letter:", "Overall Score: 74/100"},
		},
		{
			name:     "build markdown",
			data:     sampleBuild(),
			format:   "markdown",
			contains: []string{"# Resume Build 20240315_143005", "| PDF | `output/resume_20240315_143005.pdf` |", "## ATS Compatibility"},
		},
		{
			name:     "analysis text",
			data:     sampleReport(),
			format:   "text",
			contains: []string{"Score: 85/100 (ATS friendly)", "Job match: 62.5%", "kubernetes (4), golang (3)", "Best match: technology (40.0%)", "2. Use more action verbs", "Degraded sections: readability"},
		},
		{
			name:     "analysis markdown",
			data:     sampleReport(),
			format:   "markdown",
			contains: []string{"# Resume Analysis", "### Issues", "**Action verbs:** led, built", "> Degraded sections: readability"},
		},
		{
			name:     "history text",
			data:     []types.BuildRecord{{Timestamp: "20240315_143005", Name: "Jane Doe", Score: 74, ATSScore: 85, CreatedAt: time.Now()}},
			format:   "text",
			contains: []string{"=== RECENT BUILDS ===", "20240315_143005", "score= 74 ats= 85 enhanced=no"},
		},
		{
			name:     "empty history markdown",
			data:     []types.BuildRecord{},
			format:   "markdown",
			contains: []string{"_No builds recorded._"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestJSONFormatterRoundTripsReport(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleReport(), "json")
	require.NoError(t, err)

	var decoded types.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 74, decoded.Score)
	assert.True(t, decoded.ATSCompatibility.IsATSFriendly)
}

func TestRegistryUnknownFormat(t *testing.T) {
	_, err := NewFormatterRegistry().Format(sampleReport(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no formatter found for format 'xml' and type 'AnalysisReport'")
}

func TestRegistryTextRejectsUnknownType(t *testing.T) {
	// text has no generic formatter, so unknown types are rejected
	_, err := NewFormatterRegistry().Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err)
}

func TestFormatterTypeMismatch(t *testing.T) {
	_, err := (&AnalysisTextFormatter{}).Format(sampleBuild())
	assert.EqualError(t, err, "expected AnalysisReport, got types.BuildResult")
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}
