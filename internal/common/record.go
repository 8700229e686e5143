package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
	"resumebuilder/internal/utils"
	"resumebuilder/internal/validation"
)

// recordFile is the on-disk shape of a resume record. Skills may be a list
// or a comma-separated string.
type recordFile struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	JobTitle       string          `json:"job_title"`
	Company        string          `json:"company"`
	Education      string          `json:"education"`
	Experience     string          `json:"experience"`
	Skills         json.RawMessage `json:"skills"`
	Summary        string          `json:"summary"`
	Projects       string          `json:"projects"`
	Certifications string          `json:"certifications"`
	JobDescription string          `json:"job_description"`
}

// SourceOptions carries the CLI overrides applied to a loaded record.
type SourceOptions struct {
	Skills             string
	JobDescriptionFile string
}

// DecodeRecord parses a JSON resume record.
func DecodeRecord(data []byte) (types.ResumeRecord, error) {
	var file recordFile
	if err := json.Unmarshal(data, &file); err != nil {
		return types.ResumeRecord{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Invalid resume record JSON: "+err.Error(), err)
	}

	skills, raw, err := decodeSkills(file.Skills)
	if err != nil {
		return types.ResumeRecord{}, err
	}

	return types.ResumeRecord{
		Name:           file.Name,
		Email:          file.Email,
		Phone:          file.Phone,
		JobTitle:       file.JobTitle,
		Company:        file.Company,
		Education:      file.Education,
		Experience:     file.Experience,
		Skills:         skills,
		SkillsRaw:      raw,
		Summary:        optional(file.Summary),
		Projects:       optional(file.Projects),
		Certifications: optional(file.Certifications),
		JobDescription: optional(file.JobDescription),
	}, nil
}

func decodeSkills(data json.RawMessage) ([]string, string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, "", nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, "", errors.NewFieldValidationError("skills", errors.ErrCodeInvalidFormat, "Invalid skills value")
		}
		return validation.ParseSkills(raw), raw, nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, "", errors.NewFieldValidationError("skills", errors.ErrCodeInvalidFormat,
			"Skills must be a list or a comma-separated string")
	}
	return items, strings.Join(items, ", "), nil
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// LoadRecord reads a JSON record file and applies the overrides.
func (fp *FileProcessor) LoadRecord(filename string, opts SourceOptions) (types.ResumeRecord, error) {
	content, err := fp.ReadFile(filename)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	rec, err := DecodeRecord(content)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return fp.applyOverrides(rec, opts)
}

// LoadAnalysisSource loads a record for analysis. JSON files are decoded as
// records; text and PDF files become the experience text.
func (fp *FileProcessor) LoadAnalysisSource(filename string, opts SourceOptions) (types.ResumeRecord, error) {
	if utils.IsJSONFile(filename) {
		return fp.LoadRecord(filename, opts)
	}

	text, err := fp.ExtractText(filename)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return fp.applyOverrides(types.ResumeRecord{Experience: text}, opts)
}

func (fp *FileProcessor) applyOverrides(rec types.ResumeRecord, opts SourceOptions) (types.ResumeRecord, error) {
	if strings.TrimSpace(opts.Skills) != "" {
		rec.Skills = validation.ParseSkills(opts.Skills)
		rec.SkillsRaw = opts.Skills
	}

	if opts.JobDescriptionFile != "" {
		jd, err := fp.ReadText(opts.JobDescriptionFile)
		if err != nil {
			return types.ResumeRecord{}, fmt.Errorf("failed to read job description: %w", err)
		}
		rec.JobDescription = optional(jd)
	}
	return rec, nil
}
