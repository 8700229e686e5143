package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPhoneDigits = 10

// runesPerExperienceWord is the rune allowance per word when the experience
// character limit is derived from MaxExperienceWords.
const runesPerExperienceWord = 15

// Limits bounds the size of accepted input.
type Limits struct {
	MaxFieldLength     int
	MinExperienceWords int
	MaxExperienceWords int
	MaxSkills          int
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxFieldLength:     10000,
		MinExperienceWords: 50,
		MaxExperienceWords: 1000,
		MaxSkills:          20,
	}
}

// LimitsFromConfig reads the pipeline section of the configuration.
func LimitsFromConfig(cfg config.PipelineConfig) Limits {
	return Limits{
		MaxFieldLength:     cfg.MaxFieldLength,
		MinExperienceWords: cfg.MinExperienceWords,
		MaxExperienceWords: cfg.MaxExperienceWords,
		MaxSkills:          cfg.MaxSkills,
	}
}

// Validator checks a sanitized record before it is formatted. It has no side effects.
type Validator struct {
	limits Limits
}

// NewValidator creates a validator with the given limits.
func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits}
}

type namedField struct {
	name  string
	value string
}

func textFields(rec types.ResumeRecord) []namedField {
	return []namedField{
		{"name", rec.Name},
		{"email", rec.Email},
		{"phone", rec.Phone},
		{"job_title", rec.JobTitle},
		{"company", rec.Company},
		{"education", rec.Education},
		{"experience", rec.Experience},
	}
}

// Validate returns the first failing check as a field validation error.
func (v *Validator) Validate(rec types.ResumeRecord) error {
	for _, f := range textFields(rec) {
		if strings.TrimSpace(f.value) == "" {
			return missing(f.name)
		}
	}
	if len(rec.Skills) == 0 {
		return errors.NewFieldValidationError("skills", errors.ErrCodeNoSkills, "At least one skill is required")
	}

	if !emailPattern.MatchString(rec.Email) {
		return errors.NewFieldValidationError("email", errors.ErrCodeInvalidEmail, "Invalid email format")
	}

	if CountDigits(rec.Phone) < minPhoneDigits {
		return errors.NewFieldValidationError("phone", errors.ErrCodeInvalidPhone,
			fmt.Sprintf("Phone number must contain at least %d digits", minPhoneDigits))
	}

	if err := v.checkLengths(rec); err != nil {
		return err
	}

	if err := v.checkExperienceWords(rec.Experience); err != nil {
		return err
	}

	return v.checkSkillCount(rec.Skills)
}

// ValidateForAnalysis checks the reduced field set needed to score a resume.
func (v *Validator) ValidateForAnalysis(rec types.ResumeRecord) error {
	if strings.TrimSpace(rec.Experience) == "" {
		return missing("experience")
	}
	if len(rec.Skills) == 0 {
		return errors.NewFieldValidationError("skills", errors.ErrCodeNoSkills, "At least one skill is required")
	}
	if err := v.checkLengths(rec); err != nil {
		return err
	}
	return v.checkSkillCount(rec.Skills)
}

func (v *Validator) checkLengths(rec types.ResumeRecord) error {
	if v.limits.MaxFieldLength <= 0 {
		return nil
	}
	fields := textFields(rec)
	for _, opt := range []struct {
		name  string
		value *string
	}{
		{"summary", rec.Summary},
		{"projects", rec.Projects},
		{"certifications", rec.Certifications},
		{"job_description", rec.JobDescription},
	} {
		if opt.value != nil {
			fields = append(fields, namedField{opt.name, *opt.value})
		}
	}

	for _, f := range fields {
		limit := v.limits.MaxFieldLength
		if f.name == "experience" {
			limit = v.experienceLimit()
		}
		if utf8.RuneCountInString(f.value) > limit {
			return errors.NewFieldValidationError(f.name, errors.ErrCodeFieldTooLong,
				fmt.Sprintf("%s exceeds the maximum length of %d characters", f.name, limit))
		}
	}
	for _, skill := range rec.Skills {
		if utf8.RuneCountInString(skill) > v.limits.MaxFieldLength {
			return errors.NewFieldValidationError("skills", errors.ErrCodeFieldTooLong,
				fmt.Sprintf("skill exceeds the maximum length of %d characters", v.limits.MaxFieldLength))
		}
	}
	return nil
}

// experienceLimit keeps the character cap above anything the word band accepts.
func (v *Validator) experienceLimit() int {
	return max(v.limits.MaxFieldLength, v.limits.MaxExperienceWords*runesPerExperienceWord)
}

func (v *Validator) checkExperienceWords(experience string) error {
	words := len(strings.Fields(experience))
	if words < v.limits.MinExperienceWords || (v.limits.MaxExperienceWords > 0 && words > v.limits.MaxExperienceWords) {
		return errors.NewFieldValidationError("experience", errors.ErrCodeExperienceLength,
			fmt.Sprintf("Experience must be between %d and %d words (got %d)",
				v.limits.MinExperienceWords, v.limits.MaxExperienceWords, words))
	}
	return nil
}

func (v *Validator) checkSkillCount(skills []string) error {
	if v.limits.MaxSkills > 0 && len(skills) > v.limits.MaxSkills {
		return errors.NewFieldValidationError("skills", errors.ErrCodeTooManySkills,
			fmt.Sprintf("Maximum %d skills allowed", v.limits.MaxSkills))
	}
	return nil
}

func missing(field string) error {
	return errors.NewFieldValidationError(field, errors.ErrCodeMissingField,
		fmt.Sprintf("Missing required field: %s", field))
}

// CountDigits returns the number of decimal digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
