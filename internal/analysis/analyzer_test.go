package analysis

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/formatting"
	"resumebuilder/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() types.FormattedResume {
	return types.FormattedResume{
		Name:      "John Doe",
		Email:     "john@example.com",
		Phone:     "(123) 456-7890",
		JobTitle:  "Software Developer",
		Company:   "Tech Corp",
		Education: "BS Computer Science - University (2020)",
		Experience: "• Developed and maintained web applications using React and Node.js.\n" +
			"• Increased system performance by 40% through optimization.\n" +
			"• Led a team of 5 developers on critical projects.",
		Skills:    []string{"Python", "JavaScript", "React", "Node.js", "AWS"},
		SkillsRaw: "Python, JavaScript, React, Node.js, AWS",
	}
}

func TestAnalyzeKeywords(t *testing.T) {
	analysis := AnalyzeKeywords("Go go GO python docker python", "")

	assert.Equal(t, []types.KeywordCount{
		{Keyword: "go", Count: 3},
		{Keyword: "python", Count: 2},
		{Keyword: "docker", Count: 1},
	}, analysis.TopKeywords)
	assert.Equal(t, 6, analysis.TotalKeywords)
	assert.Equal(t, 3, analysis.UniqueKeywords)
	assert.Equal(t, 0.5, analysis.KeywordDensity)
	assert.Nil(t, analysis.JobMatchScore)
}

func TestAnalyzeKeywordsTiesKeepFirstSeenOrder(t *testing.T) {
	analysis := AnalyzeKeywords("beta alpha beta alpha gamma", "")
	require.Len(t, analysis.TopKeywords, 3)
	assert.Equal(t, "beta", analysis.TopKeywords[0].Keyword)
	assert.Equal(t, "alpha", analysis.TopKeywords[1].Keyword)
}

func TestAnalyzeKeywordsLimitsToTen(t *testing.T) {
	text := "one two three four five six seven eight nine ten eleven twelve"
	analysis := AnalyzeKeywords(text, "")
	assert.Len(t, analysis.TopKeywords, 10)
	assert.Equal(t, 12, analysis.UniqueKeywords)
}

func TestKeywordDensityBounds(t *testing.T) {
	inputs := []string{
		"",
		"the and of",
		"!!! 123 ???",
		"python",
		"python python python",
		"Built a Go service, then a Rust service, then a C++ service.",
		strings.Repeat("docker kubernetes the a ", 50),
	}

	for _, input := range inputs {
		analysis := AnalyzeKeywords(input, "")
		assert.GreaterOrEqual(t, analysis.KeywordDensity, 0.0, "input %q", input)
		assert.LessOrEqual(t, analysis.KeywordDensity, 1.0, "input %q", input)
		if analysis.TotalKeywords == 0 {
			assert.Zero(t, analysis.KeywordDensity, "input %q", input)
		}
	}
}

func TestJobMatchScore(t *testing.T) {
	resume := map[string]int{"python": 1, "docker": 2}

	score := JobMatchScore(resume, "Python and Kubernetes")
	require.NotNil(t, score)
	assert.Equal(t, 50.0, *score)

	assert.Nil(t, JobMatchScore(resume, ""))
	assert.Nil(t, JobMatchScore(resume, "the and of"))
}

func TestAnalyzeReadability(t *testing.T) {
	r, err := AnalyzeReadability("The cat sat. The dog ran.")
	require.NoError(t, err)

	assert.Equal(t, 2, r.SentenceCount)
	assert.Equal(t, 6, r.WordCount)
	assert.Equal(t, 3.0, r.AvgSentenceLength)
	assert.Equal(t, 3.0, r.AvgWordLength)
	assert.Equal(t, 119.19, r.FleschScore)
	assert.Equal(t, LevelVeryEasy, r.Level)

	empty, err := AnalyzeReadability("  ")
	assert.Error(t, err)
	assert.Equal(t, LevelUnknown, empty.Level)
}

func TestSentencesKeepDottedNames(t *testing.T) {
	assert.Equal(t, []string{"Built it with Node.js", "Shipped v2.0 fast"}, Sentences("Built it with Node.js. Shipped v2.0 fast!"))
}

func TestCountSyllables(t *testing.T) {
	tests := map[string]int{"cat": 1, "cake": 1, "table": 2, "the": 1, "rhythm": 1, "queue": 1, "developer": 4}
	for word, expected := range tests {
		assert.Equal(t, expected, CountSyllables(word), word)
	}
}

func TestReadabilityLevel(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{95, LevelVeryEasy},
		{85, LevelEasy},
		{75, LevelFairlyEasy},
		{65, LevelStandard},
		{45, LevelDifficult},
		{10, LevelVeryDifficult},
		{-20, LevelVeryDifficult},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ReadabilityLevel(tt.score))
	}
}

func TestCheckATS(t *testing.T) {
	resume := sampleResume()
	resume.Experience = strings.Repeat("• Developed services in Go. ", 30)

	clean := CheckATS(resume, DefaultATSFriendlyThreshold)
	assert.Equal(t, 100, clean.Score)
	assert.Empty(t, clean.Issues)
	assert.True(t, clean.IsATSFriendly)

	resume.Experience = "► Did stuff"
	resume.SkillsRaw = "go; python"
	messy := CheckATS(resume, DefaultATSFriendlyThreshold)
	assert.Equal(t, 55, messy.Score)
	assert.Equal(t, []string{IssueShortExperience, IssueSkillDelimiters, IssueNonStandardBullet}, messy.Issues)
	assert.False(t, messy.IsATSFriendly)

	empty := CheckATS(types.FormattedResume{}, DefaultATSFriendlyThreshold)
	assert.Equal(t, 40, empty.Score)
	assert.Len(t, empty.Issues, 5)
}

func TestCheckATSScoreIsBoundedAndNonIncreasing(t *testing.T) {
	resume := sampleResume()
	resume.Experience = strings.Repeat("• Built systems. ", 60)

	mutations := []func(r *types.FormattedResume){
		func(r *types.FormattedResume) {},
		func(r *types.FormattedResume) { r.SkillsRaw = "a|b" },
		func(r *types.FormattedResume) { r.Experience = strings.Repeat("✓ Built systems. ", 60) },
		func(r *types.FormattedResume) { r.Education = "" },
		func(r *types.FormattedResume) { r.Phone = "" },
		func(r *types.FormattedResume) { r.Skills = nil },
		func(r *types.FormattedResume) { r.Experience = "" },
	}

	previous := 101
	for i, mutate := range mutations {
		mutate(&resume)
		ats := CheckATS(resume, DefaultATSFriendlyThreshold)
		assert.GreaterOrEqual(t, ats.Score, 0)
		assert.LessOrEqual(t, ats.Score, 100)
		assert.LessOrEqual(t, ats.Score, previous, "step %d", i)
		previous = ats.Score
	}
}

func TestAnalyzeImpactWithNoMatches(t *testing.T) {
	impact := AnalyzeImpact("I enjoy working with people and learning new things every day")

	assert.Equal(t, 0, impact.ImpactScore)
	assert.Len(t, impact.Recommendations, 4)
	for _, count := range impact.Counts {
		assert.Zero(t, count)
	}
}

func TestAnalyzeImpactIgnoresDates(t *testing.T) {
	experience, _ := formatting.FormatExperience("Acme Corp: Engineer (Jan 2020 - present)\n" +
		"wrote some code for the website\n" +
		"helped with support tickets in 2021")

	impact := AnalyzeImpact(experience)

	assert.Equal(t, 0, impact.ImpactScore)
	assert.Len(t, impact.Recommendations, 4)
	assert.Zero(t, impact.Counts[ImpactQuantified])
}

func TestQuantifiedPattern(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Increased revenue by 20%", true},
		{"Cut costs by 15 percent", true},
		{"Saved $40k a year", true},
		{"Made builds 3x faster", true},
		{"Led a team of 5 engineers", true},
		{"Grew to 2M users", true},
		{"Served 10,000+ customers", true},
		{"January 2020 - Present", false},
		{"Joined in 2019", false},
		{"Worked on version 2 of the app", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, quantifiedPattern.MatchString(tt.input))
		})
	}
}

func TestAnalyzeImpact(t *testing.T) {
	full := AnalyzeImpact("Led a team of 5 engineers. Developed a billing API. Increased revenue by 20%. " +
		"Managed budgets. Built tools. Reduced costs.")
	assert.Equal(t, 100, full.ImpactScore)
	assert.Empty(t, full.Recommendations)
	assert.Equal(t, 2, full.Counts[ImpactQuantified])
	assert.Equal(t, 2, full.Counts[ImpactLeadership])

	partial := AnalyzeImpact("Led the team.")
	assert.Equal(t, 13, partial.ImpactScore)
	assert.Len(t, partial.Recommendations, 3)
}

func TestAnalyzeActionVerbs(t *testing.T) {
	used := AnalyzeActionVerbs("Led and managed the team; developed tools.")
	assert.Equal(t, []string{"developed", "led", "managed"}, used.Used)
	assert.Equal(t, 3, used.Count)
	assert.Empty(t, used.Suggestions)

	none := AnalyzeActionVerbs("Did things")
	assert.Zero(t, none.Count)
	assert.Equal(t, []string{"achieved", "improved", "developed", "led", "managed"}, none.Suggestions)
}

func TestAnalyzeIndustryAlignment(t *testing.T) {
	alignment := AnalyzeIndustryAlignment("Python developer using Docker and AWS; social media campaigns")

	assert.Equal(t, 50.0, alignment.Scores["software"])
	assert.Equal(t, 40.0, alignment.Scores["marketing"])
	assert.Zero(t, alignment.Scores["finance"])
	assert.Equal(t, "software", alignment.BestIndustry)

	assert.Empty(t, AnalyzeIndustryAlignment("").BestIndustry)
}

func TestContentScore(t *testing.T) {
	resume := sampleResume()
	resume.Experience = strings.TrimSpace(strings.Repeat("word ", 150))
	resume.Education = "BS - MIT (2018)"
	assert.Equal(t, 15+10+10+15+5, ContentScore(resume, 10))

	resume.Experience = strings.TrimSpace(strings.Repeat("word ", 400))
	resume.Skills = make([]string, 12)
	resume.Education = "Bachelor of Science in Computer Science - MIT"
	assert.Equal(t, 100, ContentScore(resume, 50))

	assert.Zero(t, ContentScore(types.FormattedResume{}, 0))
}

func TestAnalyze(t *testing.T) {
	a := New(0, errors.NewLogger(slog.LevelError))

	report := a.Analyze(sampleResume(), "Looking for a React and Python developer")

	assert.Empty(t, report.Degraded)
	assert.GreaterOrEqual(t, report.Score, 0)
	assert.LessOrEqual(t, report.Score, 100)
	require.NotNil(t, report.KeywordAnalysis.JobMatchScore)
	assert.Greater(t, *report.KeywordAnalysis.JobMatchScore, 0.0)
	assert.Equal(t, "software", report.IndustryAlignment.BestIndustry)
	assert.NotEqual(t, LevelUnknown, report.Readability.Level)
	assert.Contains(t, report.Feedback, "Add more detail to your experience")
	assert.Contains(t, report.Feedback, IssueShortExperience)
}

func TestAnalyzeDegradesEmptyExperience(t *testing.T) {
	var buf bytes.Buffer
	a := New(70, errors.NewLoggerWithWriter(&buf, slog.LevelDebug))

	resume := sampleResume()
	resume.Experience = ""
	report := a.Analyze(resume, "")

	assert.Equal(t, []string{StageReadability}, report.Degraded)
	assert.Equal(t, LevelUnknown, report.Readability.Level)
	assert.Equal(t, 0, report.ImpactAnalysis.ImpactScore)
	assert.Len(t, report.ImpactAnalysis.Recommendations, 4)
	assert.Contains(t, buf.String(), "Sub-analysis degraded")
}

func TestSafeRecoversFromPanics(t *testing.T) {
	a := New(70, nil)
	report := types.AnalysisReport{}

	got := safe(a, &report, StageIndustry, 7, func() (int, error) { panic("boom") })
	assert.Equal(t, 7, got)
	assert.Equal(t, []string{StageIndustry}, report.Degraded)
}
