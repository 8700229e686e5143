// Package formatting turns a sanitized, validated record into the canonical resume shape.
package formatting

import (
	"fmt"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

// Formatter normalizes resume fields. Formatting is best-effort: a field whose
// formatter fails keeps its original value.
type Formatter struct {
	logger *errors.Logger
}

// New creates a formatter. A nil logger is allowed.
func New(logger *errors.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Format produces the canonical resume for rec.
func (f *Formatter) Format(rec types.ResumeRecord) types.FormattedResume {
	f.logger.Debug("Formatting resume", "skills", len(rec.Skills))

	out := types.FormattedResume{
		Name:           guard(f, "name", rec.Name, func() string { return FormatName(rec.Name) }),
		Email:          guard(f, "email", rec.Email, func() string { return FormatEmail(rec.Email) }),
		Phone:          guard(f, "phone", rec.Phone, func() string { return FormatPhone(rec.Phone) }),
		JobTitle:       strings.TrimSpace(rec.JobTitle),
		Company:        strings.TrimSpace(rec.Company),
		SkillsRaw:      rec.SkillsRaw,
		Summary:        rec.Summary,
		Projects:       rec.Projects,
		Certifications: rec.Certifications,
	}

	out.Experience, out.ExperienceEntries = f.Experience(rec.Experience)

	edu := guard(f, "education", educationResult{text: rec.Education}, func() educationResult {
		text, entries := FormatEducation(rec.Education)
		return educationResult{text: text, entries: entries}
	})
	out.Education, out.EducationEntries = edu.text, edu.entries

	skills := guard(f, "skills", skillsResult{list: rec.Skills}, func() skillsResult {
		list, categories := FormatSkills(rec.Skills)
		return skillsResult{list: list, categories: categories}
	})
	out.Skills, out.SkillCategories = skills.list, skills.categories

	return out
}

// Experience formats experience text on its own. The builder uses it to
// re-format AI enhanced text.
func (f *Formatter) Experience(text string) (string, []types.ExperienceEntry) {
	res := guard(f, "experience", experienceResult{text: text}, func() experienceResult {
		formatted, entries := FormatExperience(text)
		return experienceResult{text: formatted, entries: entries}
	})
	return res.text, res.entries
}

type experienceResult struct {
	text    string
	entries []types.ExperienceEntry
}

type educationResult struct {
	text    string
	entries []types.EducationEntry
}

type skillsResult struct {
	list       []string
	categories map[string][]string
}

// guard runs fn and returns fallback if it panics.
func guard[T any](f *Formatter, field string, fallback T, fn func() T) (result T) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn("Formatting failed, keeping original value",
				"field", field, "panic", fmt.Sprint(r))
			result = fallback
		}
	}()
	return fn()
}
