package analysis

import (
	"regexp"
	"sort"
	"strings"

	"resumebuilder/internal/types"
)

const topKeywordLimit = 10

var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9+#.]*[a-z0-9+#]|[a-z]`)

// Tokenize lower-cases text and splits it into word tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Keywords filters tokens down to non stop words of at least two characters.
func Keywords(tokens []string) []string {
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 2 || stopWords[tok] {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

// AnalyzeKeywords counts keyword frequency in text and, when a job
// description is given, how many of its keywords the resume covers.
func AnalyzeKeywords(text, jobDescription string) types.KeywordAnalysis {
	tokens := Tokenize(text)
	keywords := Keywords(tokens)

	counts := make(map[string]int, len(keywords))
	var order []string
	for _, kw := range keywords {
		if counts[kw] == 0 {
			order = append(order, kw)
		}
		counts[kw]++
	}

	ranked := make([]types.KeywordCount, 0, len(order))
	for _, kw := range order {
		ranked = append(ranked, types.KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	// Stable sort keeps first-seen order among equal counts.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > topKeywordLimit {
		ranked = ranked[:topKeywordLimit]
	}

	analysis := types.KeywordAnalysis{
		TopKeywords:    ranked,
		TotalKeywords:  len(keywords),
		UniqueKeywords: len(order),
		JobMatchScore:  JobMatchScore(counts, jobDescription),
	}
	if len(tokens) > 0 {
		analysis.KeywordDensity = round2(float64(len(order)) / float64(len(tokens)))
	}
	return analysis
}

// JobMatchScore returns the percentage of job description keywords present in
// the resume keyword set, or nil when the job description has no keywords.
func JobMatchScore(resumeKeywords map[string]int, jobDescription string) *float64 {
	if strings.TrimSpace(jobDescription) == "" {
		return nil
	}

	jobKeywords := make(map[string]bool)
	for _, kw := range Keywords(Tokenize(jobDescription)) {
		jobKeywords[kw] = true
	}
	if len(jobKeywords) == 0 {
		return nil
	}

	matched := 0
	for kw := range jobKeywords {
		if resumeKeywords[kw] > 0 {
			matched++
		}
	}
	score := round2(float64(matched) / float64(len(jobKeywords)) * 100)
	return &score
}

func emptyKeywordAnalysis() types.KeywordAnalysis {
	return types.KeywordAnalysis{TopKeywords: []types.KeywordCount{}}
}
