package analysis

import (
	"strings"

	"resumebuilder/internal/types"
)

const (
	feedbackMinExperienceWords = 100
	feedbackMinSkills          = 5
)

// ContentScore is a weighted 0-100 completeness score.
func ContentScore(resume types.FormattedResume, uniqueKeywords int) int {
	score := min(wordCount(resume.Experience)/10, 30)
	score += min(len(resume.Skills)*2, 20)

	switch edu := strings.TrimSpace(resume.Education); {
	case len(edu) > 20:
		score += 15
	case edu != "":
		score += 10
	}

	for _, contact := range []string{resume.Name, resume.Email, resume.Phone} {
		if strings.TrimSpace(contact) != "" {
			score += 5
		}
	}

	score += min(uniqueKeywords/2, 20)
	return max(0, min(score, 100))
}

func buildFeedback(resume types.FormattedResume, report types.AnalysisReport) []string {
	feedback := []string{}
	if wordCount(resume.Experience) < feedbackMinExperienceWords {
		feedback = append(feedback, "Add more detail to your experience")
	}
	if len(resume.Skills) < feedbackMinSkills {
		feedback = append(feedback, "List at least 5 skills")
	}
	feedback = append(feedback, report.ATSCompatibility.Issues...)
	feedback = append(feedback, report.ImpactAnalysis.Recommendations...)
	if report.ActionVerbs.Count < minActionVerbs {
		feedback = append(feedback, "Use more action verbs")
	}
	return feedback
}
