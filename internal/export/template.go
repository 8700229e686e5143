package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"slices"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/formatting"
	"resumebuilder/internal/types"
)

//go:embed templates/resume.html.tmpl templates/resume.schema.json
var templateFS embed.FS

const defaultTemplatePath = "templates/resume.html.tmpl"

// requiredPlaceholders maps each field every resume template must render to
// the probe value that proves it did.
var requiredPlaceholders = map[string]string{
	"Name":         "probe-name-7f3a",
	"Email":        "probe-email-7f3a",
	"Phone":        "probe-phone-7f3a",
	"JobTitle":     "probe-title-7f3a",
	"Experience":   "probe-experience-7f3a",
	"Education":    "probe-education-7f3a",
	"SkillsJoined": "probe-skills-7f3a",
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

type skillGroup struct {
	Category string
	Skills   []string
}

// resumeView is the data a resume template sees.
type resumeView struct {
	Name     string
	Email    string
	Phone    string
	JobTitle string
	Company  string

	Summary        string
	Projects       string
	Certifications string

	Experience        string
	ExperienceEntries []types.ExperienceEntry
	Education         string
	EducationEntries  []types.EducationEntry
	SkillsJoined      string
	SkillGroups       []skillGroup
}

func newResumeView(r types.FormattedResume) resumeView {
	v := resumeView{
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		JobTitle:          r.JobTitle,
		Company:           r.Company,
		Summary:           deref(r.Summary),
		Projects:          deref(r.Projects),
		Certifications:    deref(r.Certifications),
		Experience:        r.Experience,
		ExperienceEntries: r.ExperienceEntries,
		Education:         r.Education,
		EducationEntries:  r.EducationEntries,
		SkillsJoined:      strings.Join(r.Skills, ", "),
	}
	for _, category := range formatting.Categories {
		if skills := r.SkillCategories[category]; len(skills) > 0 {
			v.SkillGroups = append(v.SkillGroups, skillGroup{Category: category, Skills: skills})
		}
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TemplateSet is a parsed resume template known to render every required field.
type TemplateSet struct {
	source string
	tmpl   *template.Template
}

// DefaultTemplateSet returns the embedded resume template.
func DefaultTemplateSet() (*TemplateSet, error) {
	src, err := templateFS.ReadFile(defaultTemplatePath)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeTemplateInvalid, "Embedded resume template missing", err)
	}
	return ParseTemplateSet("embedded", string(src))
}

// LoadTemplateSet parses the template at path, or the embedded template when
// path is empty.
func LoadTemplateSet(path string) (*TemplateSet, error) {
	if path == "" {
		return DefaultTemplateSet()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read resume template %s", path), err)
	}
	return ParseTemplateSet(path, string(src))
}

// ParseTemplateSet parses src and rejects it unless rendering a probe record
// emits every required placeholder.
func ParseTemplateSet(source, src string) (*TemplateSet, error) {
	tmpl, err := template.New("resume").Funcs(templateFuncs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeTemplateInvalid,
			fmt.Sprintf("Failed to parse resume template %s", source), err)
	}

	probe := resumeView{
		Name:         requiredPlaceholders["Name"],
		Email:        requiredPlaceholders["Email"],
		Phone:        requiredPlaceholders["Phone"],
		JobTitle:     requiredPlaceholders["JobTitle"],
		Experience:   requiredPlaceholders["Experience"],
		Education:    requiredPlaceholders["Education"],
		SkillsJoined: requiredPlaceholders["SkillsJoined"],
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, probe); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeTemplateInvalid,
			fmt.Sprintf("Resume template %s failed to render", source), err)
	}

	out := buf.String()
	var missing []string
	for field, marker := range requiredPlaceholders {
		if !strings.Contains(out, marker) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errors.NewConfigError(errors.ErrCodeTemplateInvalid,
			fmt.Sprintf("Resume template %s is missing placeholders: %s", source, strings.Join(missing, ", ")), nil)
	}

	return &TemplateSet{source: source, tmpl: tmpl}, nil
}

// Source names where the template came from.
func (t *TemplateSet) Source() string {
	return t.source
}

// Render fills the template with resume.
func (t *TemplateSet) Render(resume types.FormattedResume) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, newResumeView(resume)); err != nil {
		return "", errors.NewFileGenerationError(errors.ErrCodeRenderFailed, "Failed to render resume HTML", err)
	}
	return buf.String(), nil
}

func loadSchema() ([]byte, error) {
	return templateFS.ReadFile("templates/resume.schema.json")
}
