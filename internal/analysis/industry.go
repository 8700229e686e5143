package analysis

import (
	"strings"

	"resumebuilder/internal/types"
)

// industries is ordered so that ties resolve deterministically.
var industries = []struct {
	name     string
	keywords []string
}{
	{"software", []string{"python", "javascript", "react", "node", "aws", "docker"}},
	{"marketing", []string{"seo", "analytics", "social media", "content", "campaign"}},
	{"finance", []string{"accounting", "budget", "financial analysis", "forecasting"}},
	{"sales", []string{"revenue", "sales", "negotiation", "client", "business development"}},
}

// AnalyzeIndustryAlignment returns, per industry, the percentage of its
// keywords present in text. Keywords may span words, so they match as substrings.
func AnalyzeIndustryAlignment(text string) types.IndustryAlignment {
	lower := strings.ToLower(text)
	result := types.IndustryAlignment{Scores: make(map[string]float64, len(industries))}

	best := 0.0
	for _, ind := range industries {
		found := 0
		for _, kw := range ind.keywords {
			if strings.Contains(lower, kw) {
				found++
			}
		}
		score := round2(float64(found) / float64(len(ind.keywords)) * 100)
		result.Scores[ind.name] = score
		if score > best {
			best = score
			result.BestIndustry = ind.name
		}
	}
	return result
}
