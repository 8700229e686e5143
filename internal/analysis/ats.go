package analysis

import (
	"strings"

	"resumebuilder/internal/types"
)

const (
	atsMinExperienceWords = 100
	nonStandardBullets    = "►▪◆■➢✓✔→★"
)

// ATS penalties.
const (
	penaltyShortExperience   = 20
	penaltySkillDelimiters   = 10
	penaltyNonStandardBullet = 15
	penaltyMissingSection    = 10
)

// ATS issue messages.
const (
	IssueShortExperience   = "Experience section is too short (under 100 words)"
	IssueSkillDelimiters   = "Separate skills with commas"
	IssueNonStandardBullet = "Use standard bullet points (•, -, *)"
	IssueMissingExperience = "Missing section: experience"
	IssueMissingEducation  = "Missing section: education"
	IssueMissingSkills     = "Missing section: skills"
	IssueMissingContact    = "Missing section: contact information"
)

// CheckATS scores how well the resume would parse in an applicant tracking
// system. Each triggered issue deducts a fixed penalty; the score floors at 0.
func CheckATS(resume types.FormattedResume, threshold int) types.ATSCompatibility {
	score := 100
	issues := []string{}
	deduct := func(points int, issue string) {
		score -= points
		issues = append(issues, issue)
	}

	if wordCount(resume.Experience) < atsMinExperienceWords {
		deduct(penaltyShortExperience, IssueShortExperience)
	}

	rawSkills := resume.SkillsRaw
	if rawSkills == "" {
		rawSkills = strings.Join(resume.Skills, ", ")
	}
	if strings.ContainsAny(strings.TrimSpace(rawSkills), ";|\n") {
		deduct(penaltySkillDelimiters, IssueSkillDelimiters)
	}

	if strings.ContainsAny(resume.Experience, nonStandardBullets) {
		deduct(penaltyNonStandardBullet, IssueNonStandardBullet)
	}

	if strings.TrimSpace(resume.Experience) == "" {
		deduct(penaltyMissingSection, IssueMissingExperience)
	}
	if strings.TrimSpace(resume.Education) == "" {
		deduct(penaltyMissingSection, IssueMissingEducation)
	}
	if len(resume.Skills) == 0 {
		deduct(penaltyMissingSection, IssueMissingSkills)
	}
	if strings.TrimSpace(resume.Email) == "" || strings.TrimSpace(resume.Phone) == "" {
		deduct(penaltyMissingSection, IssueMissingContact)
	}

	score = max(score, 0)
	return types.ATSCompatibility{
		Score:         score,
		Issues:        issues,
		IsATSFriendly: score >= threshold,
	}
}
