package validation

import (
	"regexp"
	"strings"
	"unicode"

	"resumebuilder/internal/types"
)

var (
	blockTagPattern = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(script|style)\s*>`)
	tagPattern      = regexp.MustCompile(`<[^>]+>`)
)

// allowedPunctuation is the punctuation kept in free text besides letters, digits and whitespace.
const allowedPunctuation = `.,;:!?'"()&/+#@%$*-–•_►▪◆■➢✓✔→★`

// Sanitize strips markup and characters outside the text whitelist.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")

	// Tag removal can expose new tag-like text ("<<b>b>"), so repeat until stable.
	for {
		next := tagPattern.ReplaceAllString(blockTagPattern.ReplaceAllString(cleaned, ""), "")
		if next == cleaned {
			break
		}
		cleaned = next
	}

	cleaned = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			return r
		case strings.ContainsRune(allowedPunctuation, r):
			return r
		default:
			return -1
		}
	}, cleaned)

	return strings.TrimSpace(cleaned)
}

// SanitizeRecord returns a copy of rec with every text field and skill sanitized.
// Skills that sanitize to empty are dropped.
func SanitizeRecord(rec types.ResumeRecord) types.ResumeRecord {
	out := types.ResumeRecord{
		Name:       Sanitize(rec.Name),
		Email:      Sanitize(rec.Email),
		Phone:      Sanitize(rec.Phone),
		JobTitle:   Sanitize(rec.JobTitle),
		Company:    Sanitize(rec.Company),
		Education:  Sanitize(rec.Education),
		Experience: Sanitize(rec.Experience),
		SkillsRaw:  Sanitize(rec.SkillsRaw),

		Summary:        sanitizeOptional(rec.Summary),
		Projects:       sanitizeOptional(rec.Projects),
		Certifications: sanitizeOptional(rec.Certifications),
		JobDescription: sanitizeOptional(rec.JobDescription),
	}

	out.Skills = make([]string, 0, len(rec.Skills))
	for _, skill := range rec.Skills {
		if cleaned := Sanitize(skill); cleaned != "" {
			out.Skills = append(out.Skills, cleaned)
		}
	}

	return out
}

func sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := Sanitize(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// ParseSkills splits a comma-separated skills string, trimming entries and dropping empties.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}
