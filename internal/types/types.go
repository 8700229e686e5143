package types

import "time"

// ResumeRecord is the candidate input as submitted by a form, JSON body or record file.
type ResumeRecord struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	JobTitle   string   `json:"job_title"`
	Company    string   `json:"company"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	Skills     []string `json:"skills"`

	// SkillsRaw keeps the delimiter style the candidate used, for ATS checks.
	SkillsRaw string `json:"-"`

	Summary        *string `json:"summary,omitempty"`
	Projects       *string `json:"projects,omitempty"`
	Certifications *string `json:"certifications,omitempty"`
	JobDescription *string `json:"job_description,omitempty"`
}

// ExperienceEntry groups bullets under a "Company: Position (Date)" header.
type ExperienceEntry struct {
	Company  string   `json:"company,omitempty"`
	Position string   `json:"position,omitempty"`
	Date     string   `json:"date,omitempty"`
	Bullets  []string `json:"bullets"`
}

// EducationEntry is one "Degree - Institution (Year)" line.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`
}

// FormattedResume is the canonical record produced by the formatter and consumed by
// the analyzer and exporter.
type FormattedResume struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`

	Experience        string            `json:"experience"`
	ExperienceEntries []ExperienceEntry `json:"experience_entries"`

	Education        string           `json:"education"`
	EducationEntries []EducationEntry `json:"education_entries"`

	Skills          []string            `json:"skills"`
	SkillCategories map[string][]string `json:"skill_categories"`
	SkillsRaw       string              `json:"-"`

	Summary        *string `json:"summary,omitempty"`
	Projects       *string `json:"projects,omitempty"`
	Certifications *string `json:"certifications,omitempty"`

	CoverLetter        string `json:"cover_letter,omitempty"`
	ExperienceEnhanced bool   `json:"experience_enhanced"`
}

// Result carries a value that is either real or a documented fallback.
type Result[T any] struct {
	Value    T
	Fallback bool
	Reason   string
}

// Real wraps a value produced by the normal path.
func Real[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded wraps a fallback value and why it was used.
func Degraded[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Fallback: true, Reason: reason}
}

// KeywordCount is a keyword and its frequency.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// KeywordAnalysis summarizes keyword frequency over experience and skills text.
type KeywordAnalysis struct {
	TopKeywords    []KeywordCount `json:"top_keywords"`
	KeywordDensity float64        `json:"keyword_density"`
	TotalKeywords  int            `json:"total_keywords"`
	UniqueKeywords int            `json:"unique_keywords"`
	JobMatchScore  *float64       `json:"job_match_score"`
}

// Readability holds sentence statistics and the Flesch Reading Ease estimate.
type Readability struct {
	SentenceCount     int     `json:"sentence_count"`
	WordCount         int     `json:"word_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	FleschScore       float64 `json:"flesch_score"`
	Level             string  `json:"level"`
}

// ATSCompatibility is the penalty-based parse-friendliness score.
type ATSCompatibility struct {
	Score         int      `json:"score"`
	Issues        []string `json:"issues"`
	IsATSFriendly bool     `json:"is_ats_friendly"`
}

// IndustryAlignment is the share of each industry's keywords found in the resume.
type IndustryAlignment struct {
	Scores       map[string]float64 `json:"scores"`
	BestIndustry string             `json:"best_industry,omitempty"`
}

// ImpactAnalysis counts achievement-style sentences per category.
type ImpactAnalysis struct {
	Counts          map[string]int `json:"counts"`
	ImpactScore     int            `json:"impact_score"`
	Recommendations []string       `json:"recommendations"`
}

// ActionVerbs lists the strong verbs found in the experience text.
type ActionVerbs struct {
	Used        []string `json:"used"`
	Count       int      `json:"count"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AnalysisReport is derived once per resume and never mutated afterwards.
type AnalysisReport struct {
	Score             int               `json:"score"`
	Feedback          []string          `json:"feedback"`
	KeywordAnalysis   KeywordAnalysis   `json:"keyword_analysis"`
	ATSCompatibility  ATSCompatibility  `json:"ats_compatibility"`
	IndustryAlignment IndustryAlignment `json:"industry_alignment"`
	Readability       Readability       `json:"readability"`
	ImpactAnalysis    ImpactAnalysis    `json:"impact_analysis"`
	ActionVerbs       ActionVerbs       `json:"action_verbs"`
	Degraded          []string          `json:"degraded,omitempty"`
}

// ArtifactManifest lists the files written for one build, keyed by timestamp.
type ArtifactManifest struct {
	Timestamp   string `json:"timestamp"`
	JSON        string `json:"json"`
	HTML        string `json:"html"`
	PDF         string `json:"pdf"`
	CoverLetter string `json:"cover_letter"`
	Analysis    string `json:"analysis"`
}

// Paths returns every artifact path in write order.
func (m ArtifactManifest) Paths() []string {
	return []string{m.JSON, m.HTML, m.PDF, m.CoverLetter, m.Analysis}
}

// BuildResult is what a full pipeline run returns.
type BuildResult struct {
	Manifest ArtifactManifest `json:"manifest"`
	Resume   FormattedResume  `json:"resume"`
	Analysis AnalysisReport   `json:"analysis"`
}

// BuildRecord is the row persisted to build history.
type BuildRecord struct {
	Timestamp          string    `json:"timestamp"`
	Name               string    `json:"name"`
	JobTitle           string    `json:"job_title"`
	Company            string    `json:"company"`
	Score              int       `json:"score"`
	ATSScore           int       `json:"ats_score"`
	ExperienceEnhanced bool      `json:"experience_enhanced"`
	CreatedAt          time.Time `json:"created_at"`
}
