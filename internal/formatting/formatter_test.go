package formatting

import (
	"bytes"
	"log/slog"
	"testing"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123-456-7890", "(123) 456-7890"},
		{"1234567890", "(123) 456-7890"},
		{"(123) 456-7890", "(123) 456-7890"},
		{"1-800-555-0199", "+1 (800) 555-0199"},
		{"+1 (800) 555 0199", "+1 (800) 555-0199"},
		{"2-800-555-0199", "2-800-555-0199"},
		{"555-0199", "555-0199"},
		{"+44 20 7946 0958 12", "+44 20 7946 0958 12"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPhone(tt.input))
		})
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"jane doe", "Jane Doe"},
		{"JANE DOE", "Jane Doe"},
		{"mary-jane watson", "Mary-Jane Watson"},
		{"john mcdonald", "John McDonald"},
		{"angus macdonald", "Angus MacDonald"},
		{"mack smith", "Mack Smith"},
		{"sean o'brien", "Sean O'Brien"},
		{"Vincent DeVito", "Vincent DeVito"},
		{"jOHN smith", "John Smith"},
		{"mcDONALD", "McDonald"},
		{"maria machado", "Maria Machado"},
		{"rosa MACHADO", "Rosa Machado"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatName(tt.input))
		})
	}
}

func TestFormatEmail(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", FormatEmail(" Jane.Doe@Example.COM "))
}

func TestFormatExperience(t *testing.T) {
	input := "led the migration to kubernetes\n" +
		"\n" +
		"Acme Corp: Senior Engineer (jan 2020 - present)\n" +
		"- reduced latency by 40%\n" +
		"* shipped billing v2 in 03/2021!\n" +
		"Globex: Engineer (2018-06 - 12/2019)\n" +
		"• Mentored three interns."

	text, entries := FormatExperience(input)

	expected := "• Led the migration to kubernetes.\n" +
		"Acme Corp: Senior Engineer (January 2020 - Present)\n" +
		"• Reduced latency by 40%.\n" +
		"• Shipped billing v2 in March 2021!\n" +
		"Globex: Engineer (June 2018 - December 2019)\n" +
		"• Mentored three interns."
	assert.Equal(t, expected, text)

	require.Len(t, entries, 3)
	assert.Empty(t, entries[0].Company)
	assert.Equal(t, []string{"Led the migration to kubernetes."}, entries[0].Bullets)

	assert.Equal(t, "Acme Corp", entries[1].Company)
	assert.Equal(t, "Senior Engineer", entries[1].Position)
	assert.Equal(t, "January 2020 - Present", entries[1].Date)
	assert.Len(t, entries[1].Bullets, 2)

	assert.Equal(t, "Globex", entries[2].Company)
	assert.Equal(t, []string{"Mentored three interns."}, entries[2].Bullets)
}

func TestFormatExperienceIsIdempotent(t *testing.T) {
	inputs := []string{
		"built things\nshipped more things",
		"• Already formatted.\n• Also done!",
		"Initech: Analyst (sept 2015 - current)\nfiled tps reports",
		"",
	}

	for _, input := range inputs {
		once, _ := FormatExperience(input)
		twice, _ := FormatExperience(once)
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalizeDates(t *testing.T) {
	assert.Equal(t, "From January 2020 to March 2021", NormalizeDates("From Jan. 2020 to 03/2021"))
	assert.Equal(t, "September 2019", NormalizeDates("2019-09"))
	assert.Equal(t, "2019-2020", NormalizeDates("2019-2020"))
	assert.Equal(t, "Started 2020-01-15", NormalizeDates("Started 2020-01-15"))
	assert.Equal(t, "Started 12/01/2020", NormalizeDates("Started 12/01/2020"))
	assert.Equal(t, "January 2020 - Present", NormalizeDateRange("january 2020 - PRESENT"))
}

func TestAbbreviateDegree(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"bachelor of science", "BS"},
		{"Bachelor of Science in physics", "BS in Physics"},
		{"bachelor of sciences", "Bachelor of Sciences"},
		{"master of artsy things", "Master of Artsy Things"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, AbbreviateDegree(tt.input))
		})
	}
}

func TestFormatEducation(t *testing.T) {
	input := "Bachelor of Science in computer science - stanford university (2018)\n" +
		"master of business administration - Wharton\n" +
		"Diploma in design-Art Institute\n" +
		"high school diploma (2012)"

	text, entries := FormatEducation(input)

	expected := "BS in Computer Science - Stanford University (2018)\n" +
		"MBA - Wharton\n" +
		"Diploma in Design - Art Institute\n" +
		"High School Diploma (2012)"
	assert.Equal(t, expected, text)

	require.Len(t, entries, 4)
	assert.Equal(t, types.EducationEntry{Degree: "BS in Computer Science", Institution: "Stanford University", Year: "2018"}, entries[0])
	assert.Equal(t, "2012", entries[3].Year)

	again, _ := FormatEducation(text)
	assert.Equal(t, text, again)
}

func TestFormatSkills(t *testing.T) {
	list, categories := FormatSkills([]string{"python", "REACT", "ms excel"})

	assert.Equal(t, []string{"Python", "React", "Microsoft Excel"}, list)
	assert.Equal(t, map[string][]string{
		CategoryLanguages:  {"Python"},
		CategoryFrameworks: {"React"},
		CategoryOther:      {"Microsoft Excel"},
	}, categories)
}

func TestFormatSkillsBucketsAreExclusiveAndSorted(t *testing.T) {
	input := []string{"golang", "Go", "docker", "leadership", "kotlin", "basket weaving", "", "AWS", "javascript"}
	list, categories := FormatSkills(input)

	assert.Equal(t, []string{"Go", "Docker", "Leadership", "Kotlin", "Basket Weaving", "AWS", "JavaScript"}, list)
	assert.Equal(t, []string{"Go", "JavaScript", "Kotlin"}, categories[CategoryLanguages])
	assert.Equal(t, []string{"AWS", "Docker"}, categories[CategoryTools])

	seen := map[string]string{}
	for category, bucket := range categories {
		assert.Contains(t, Categories, category)
		assert.NotEmpty(t, bucket)
		for _, skill := range bucket {
			_, dup := seen[skill]
			assert.False(t, dup, "skill %q appears in more than one bucket", skill)
			seen[skill] = category
		}
	}
	assert.Equal(t, len(list), SkillCount(categories))
}

func TestFormat(t *testing.T) {
	var buf bytes.Buffer
	f := New(errors.NewLoggerWithWriter(&buf, slog.LevelDebug))

	summary := "Builder of systems"
	out := f.Format(types.ResumeRecord{
		Name:       "jane doe",
		Email:      "Jane@Example.com",
		Phone:      "123-456-7890",
		JobTitle:   " Engineer ",
		Company:    "Acme",
		Education:  "Bachelor of Arts - Yale",
		Experience: "wrote code",
		Skills:     []string{"python", "REACT", "ms excel"},
		SkillsRaw:  "python, REACT, ms excel",
		Summary:    &summary,
	})

	assert.Equal(t, "Jane Doe", out.Name)
	assert.Equal(t, "jane@example.com", out.Email)
	assert.Equal(t, "(123) 456-7890", out.Phone)
	assert.Equal(t, "Engineer", out.JobTitle)
	assert.Equal(t, "BA - Yale", out.Education)
	assert.Equal(t, "• Wrote code.", out.Experience)
	assert.Contains(t, out.SkillCategories[CategoryLanguages], "Python")
	assert.Equal(t, "python, REACT, ms excel", out.SkillsRaw)
	assert.Equal(t, &summary, out.Summary)
}

func TestGuardKeepsOriginalOnPanic(t *testing.T) {
	var buf bytes.Buffer
	f := New(errors.NewLoggerWithWriter(&buf, slog.LevelDebug))

	got := guard(f, "name", "original", func() string { panic("boom") })
	assert.Equal(t, "original", got)
	assert.Contains(t, buf.String(), "Formatting failed")
	assert.Contains(t, buf.String(), `"field":"name"`)
}
