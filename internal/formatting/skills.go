package formatting

import (
	"slices"
	"strings"
)

// Skill categories.
const (
	CategoryLanguages  = "Programming Languages"
	CategoryFrameworks = "Frameworks & Libraries"
	CategoryTools      = "Tools & Platforms"
	CategorySoftSkills = "Soft Skills"
	CategoryOther      = "Other"
)

// Categories lists every bucket a skill can land in.
var Categories = []string{CategoryLanguages, CategoryFrameworks, CategoryTools, CategorySoftSkills, CategoryOther}

var skillCatalog = map[string][]string{
	CategoryLanguages: {
		"Python", "JavaScript", "TypeScript", "Java", "C", "C++", "C#", "Go", "Ruby", "PHP",
		"Swift", "Kotlin", "Rust", "Scala", "R", "SQL", "HTML", "CSS", "Bash", "Perl", "MATLAB",
	},
	CategoryFrameworks: {
		"React", "Angular", "Vue.js", "Django", "Flask", "FastAPI", "Spring", "Node.js", "Express",
		"Ruby on Rails", ".NET", "jQuery", "Next.js", "TensorFlow", "PyTorch", "Pandas", "NumPy",
		"Bootstrap", "Laravel", "Gin",
	},
	CategoryTools: {
		"Git", "Docker", "Kubernetes", "AWS", "Azure", "GCP", "Jenkins", "Jira", "Linux", "Terraform",
		"Ansible", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "GitHub", "GitLab", "Figma",
	},
	CategorySoftSkills: {
		"Leadership", "Communication", "Teamwork", "Problem Solving", "Time Management",
		"Critical Thinking", "Collaboration", "Project Management", "Mentoring", "Adaptability",
	},
}

// skillAliases maps lower-cased spellings to their canonical form.
var skillAliases = map[string]string{
	"js":            "JavaScript",
	"ts":            "TypeScript",
	"golang":        "Go",
	"c sharp":       "C#",
	"cpp":           "C++",
	"reactjs":       "React",
	"react.js":      "React",
	"vue":           "Vue.js",
	"vuejs":         "Vue.js",
	"angularjs":     "Angular",
	"nodejs":        "Node.js",
	"node":          "Node.js",
	"expressjs":     "Express",
	"rails":         "Ruby on Rails",
	"nextjs":        "Next.js",
	"dotnet":        ".NET",
	"postgres":      "PostgreSQL",
	"k8s":           "Kubernetes",
	"ms excel":      "Microsoft Excel",
	"excel":         "Microsoft Excel",
	"ms word":       "Microsoft Word",
	"word":          "Microsoft Word",
	"ms office":     "Microsoft Office",
	"powerpoint":    "Microsoft PowerPoint",
	"ms powerpoint": "Microsoft PowerPoint",
}

var (
	canonicalSkills = map[string]string{}
	skillCategory   = map[string]string{}
)

func init() {
	for category, skills := range skillCatalog {
		for _, skill := range skills {
			key := strings.ToLower(skill)
			canonicalSkills[key] = skill
			skillCategory[key] = category
		}
	}
}

// CanonicalSkill returns the preferred spelling of a skill and its category.
func CanonicalSkill(skill string) (string, string) {
	key := strings.ToLower(strings.Join(strings.Fields(skill), " "))
	if alias, ok := skillAliases[key]; ok {
		key = strings.ToLower(alias)
		if _, known := canonicalSkills[key]; !known {
			return alias, CategoryOther
		}
	}
	if canonical, ok := canonicalSkills[key]; ok {
		return canonical, skillCategory[key]
	}
	return TitleCase(skill), CategoryOther
}

// FormatSkills canonicalizes and de-duplicates skills, and buckets them by
// category. Buckets are sorted and never empty.
func FormatSkills(skills []string) ([]string, map[string][]string) {
	list := make([]string, 0, len(skills))
	categories := make(map[string][]string)
	seen := make(map[string]bool, len(skills))

	for _, skill := range skills {
		if strings.TrimSpace(skill) == "" {
			continue
		}
		canonical, category := CanonicalSkill(skill)
		key := strings.ToLower(canonical)
		if seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, canonical)
		categories[category] = append(categories[category], canonical)
	}

	for _, bucket := range categories {
		slices.SortFunc(bucket, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		})
	}
	return list, categories
}

// SkillCount returns the number of skills across all categories.
func SkillCount(categories map[string][]string) int {
	n := 0
	for _, bucket := range categories {
		n += len(bucket)
	}
	return n
}
