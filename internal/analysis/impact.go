package analysis

import (
	"math"
	"regexp"
	"strings"

	"resumebuilder/internal/types"
)

// Impact categories.
const (
	ImpactQuantified = "quantified_achievements"
	ImpactLeadership = "leadership"
	ImpactTechnical  = "technical_implementation"
	ImpactStatement  = "impact_statements"
)

const maxCountedPerCategory = 2

// quantifiedPattern matches percentages, currency, multipliers and counts of
// things. Bare numbers such as the years in a date range do not match.
var quantifiedPattern = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:%|percent\b)` +
	`|[$€£]\s*\d` +
	`|\b\d+(?:\.\d+)?x\b` +
	`|\b\d+(?:[.,]\d+)*\s*(?:k|m|b)?\+?\s+(?:users|customers|clients|people|engineers|developers|members|employees|` +
	`projects|teams|services|servers|applications|apps|products|features|requests|transactions|orders|sales|` +
	`leads|hours|days|weeks|months|downloads|countries|markets|stores|accounts|students|patients|dollars|` +
	`million|billion|thousand)\b`)

var impactCategories = []struct {
	name           string
	pattern        *regexp.Regexp
	recommendation string
}{
	{
		name:           ImpactQuantified,
		pattern:        quantifiedPattern,
		recommendation: "Quantify your achievements with numbers, percentages or dollar amounts",
	},
	{
		name:           ImpactLeadership,
		pattern:        regexp.MustCompile(`(?i)\b(led|managed|supervised|mentored|directed|headed)\b`),
		recommendation: "Highlight leadership experience such as leading or mentoring a team",
	},
	{
		name:           ImpactTechnical,
		pattern:        regexp.MustCompile(`(?i)\b(developed|implemented|designed|built|engineered|architected|programmed)\b`),
		recommendation: "Describe the technical work you designed, built or implemented",
	},
	{
		name:           ImpactStatement,
		pattern:        regexp.MustCompile(`(?i)\b(increased|decreased|reduced|improved|saved|generated|grew|boosted)\b`),
		recommendation: "Show the outcome of your work, for example what you increased, reduced or improved",
	},
}

// AnalyzeImpact counts sentences per achievement category and derives a 0-100
// impact score. Every category without a match yields a recommendation.
func AnalyzeImpact(experience string) types.ImpactAnalysis {
	sentences := Sentences(experience)

	result := emptyImpact()
	total := 0.0
	for _, cat := range impactCategories {
		count := 0
		for _, s := range sentences {
			if cat.pattern.MatchString(s) {
				count++
			}
		}
		result.Counts[cat.name] = count
		total += 100.0 / float64(len(impactCategories)) * float64(min(count, maxCountedPerCategory)) / maxCountedPerCategory
		if count == 0 {
			result.Recommendations = append(result.Recommendations, cat.recommendation)
		}
	}
	result.ImpactScore = int(math.Round(total))
	return result
}

func emptyImpact() types.ImpactAnalysis {
	return types.ImpactAnalysis{Counts: map[string]int{}, Recommendations: []string{}}
}

// actionVerbs are the strong verbs looked for in experience text.
var actionVerbs = []string{
	"achieved", "improved", "developed", "led", "managed", "created",
	"implemented", "increased", "decreased", "negotiated", "coordinated",
	"supervised", "trained", "designed", "launched", "spearheaded",
	"established", "executed", "generated", "reduced", "streamlined",
}

const (
	minActionVerbs    = 3
	maxVerbSuggestion = 5
)

// AnalyzeActionVerbs lists which strong verbs appear in the experience text.
func AnalyzeActionVerbs(experience string) types.ActionVerbs {
	present := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(experience), -1) {
		present[w] = true
	}

	result := types.ActionVerbs{Used: []string{}}
	var unused []string
	for _, verb := range actionVerbs {
		if present[verb] {
			result.Used = append(result.Used, verb)
		} else {
			unused = append(unused, verb)
		}
	}
	result.Count = len(result.Used)

	if result.Count < minActionVerbs {
		result.Suggestions = unused[:min(maxVerbSuggestion, len(unused))]
	}
	return result
}
