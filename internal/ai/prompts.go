package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// SystemPrompts contains the system-level instructions per operation
type SystemPrompts struct {
	EnhanceExperience string
	CoverLetter       string
}

// UserPrompts contains the user prompt templates per operation. Templates use
// text/template syntax: {{.Text}} for enhancement, CoverLetterData fields for
// cover letters.
type UserPrompts struct {
	EnhanceExperience string
	CoverLetter       string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	EnhanceExperience: `You are a professional resume assistant. You rewrite work experience without inventing employers, dates, metrics or responsibilities that are not in the source text.`,

	CoverLetter: `You are a professional career writer. You write concise, personalized cover letters grounded only in the candidate information you are given.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	EnhanceExperience: `Rewrite the following work experience into bullet points using strong action verbs and a professional tone:

"""{{.Text}}"""`,

	CoverLetter: `Write a professional and personalized cover letter for a {{.JobTitle}} position at {{.Company}}.
Use the following candidate info:
- Name: {{.Name}}
- Email: {{.Email}}
- Phone: {{.Phone}}
- Education: {{.Education}}
- Experience: {{.Experience}}
- Skills: {{.Skills}}`,
}

// EnhanceData is the template input for experience enhancement.
type EnhanceData struct {
	Text string
}

// CoverLetterData is the template input for cover letter generation.
type CoverLetterData struct {
	Name       string
	Email      string
	Phone      string
	JobTitle   string
	Company    string
	Education  string
	Experience string
	Skills     string
}

// renderPrompt executes a prompt template against data.
func renderPrompt(name, tmpl string, data any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("invalid %s prompt template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// resolvePrompt selects the prompt by priority: file content, then inline
// configuration, then the built-in default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
