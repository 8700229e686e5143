package formatting

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumebuilder/internal/types"
)

var yearSuffixPattern = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

// degreeAbbreviations is ordered longest first so that the most specific prefix wins.
var degreeAbbreviations = []struct {
	long  string
	short string
}{
	{"master of business administration", "MBA"},
	{"master of engineering", "MEng"},
	{"bachelor of engineering", "BEng"},
	{"bachelor of fine arts", "BFA"},
	{"associate of science", "AS"},
	{"doctor of philosophy", "PhD"},
	{"bachelor of science", "BS"},
	{"associate of arts", "AA"},
	{"doctor of medicine", "MD"},
	{"master of science", "MS"},
	{"bachelor of arts", "BA"},
	{"master of arts", "MA"},
	{"juris doctor", "JD"},
}

var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "for": true, "in": true,
	"of": true, "on": true, "the": true, "to": true, "with": true,
}

// FormatEducation reformats "Degree - Institution (Year)" lines.
func FormatEducation(text string) (string, []types.EducationEntry) {
	var (
		lines   []string
		entries []types.EducationEntry
	)

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		entry := parseEducationLine(line)
		entries = append(entries, entry)
		lines = append(lines, renderEducationEntry(entry))
	}

	return strings.Join(lines, "\n"), entries
}

func parseEducationLine(line string) types.EducationEntry {
	degree, institution, found := strings.Cut(line, " - ")
	if !found {
		degree, institution, found = strings.Cut(line, "-")
	}

	var year string
	target := &institution
	if !found {
		target = &degree
	}
	if m := yearSuffixPattern.FindStringSubmatch(*target); m != nil {
		year = m[1]
		*target = yearSuffixPattern.ReplaceAllString(*target, "")
	}

	entry := types.EducationEntry{Year: year}
	if !found {
		entry.Degree = TitleCase(strings.TrimSpace(degree))
		return entry
	}
	entry.Degree = AbbreviateDegree(strings.TrimSpace(degree))
	entry.Institution = TitleCase(strings.TrimSpace(institution))
	return entry
}

func renderEducationEntry(e types.EducationEntry) string {
	var b strings.Builder
	b.WriteString(e.Degree)
	if e.Institution != "" {
		b.WriteString(" - ")
		b.WriteString(e.Institution)
	}
	if e.Year != "" {
		b.WriteString(" (")
		b.WriteString(e.Year)
		b.WriteString(")")
	}
	return b.String()
}

// AbbreviateDegree replaces a recognized long degree name prefix with its
// abbreviation and title-cases the rest.
func AbbreviateDegree(degree string) string {
	lower := strings.ToLower(degree)
	for _, d := range degreeAbbreviations {
		if !strings.HasPrefix(lower, d.long) {
			continue
		}
		// "bachelor of sciences" is not "bachelor of science"
		if len(lower) > len(d.long) && lower[len(d.long)] != ' ' {
			continue
		}
		rest := strings.TrimSpace(degree[len(d.long):])
		if rest == "" {
			return d.short
		}
		return d.short + " " + titleWords(rest, false)
	}
	return TitleCase(degree)
}

// TitleCase capitalizes words, keeping small words lower case except the first.
// Acronyms and mixed case words are left alone.
func TitleCase(s string) string {
	return titleWords(s, true)
}

func titleWords(s string, capitalizeFirst bool) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		switch {
		case isMixedCase(w) || isAcronym(w):
			// keep
		case smallWords[lower] && (i > 0 || !capitalizeFirst):
			words[i] = lower
		default:
			r, size := utf8.DecodeRuneInString(lower)
			words[i] = string(unicode.ToUpper(r)) + lower[size:]
		}
	}
	return strings.Join(words, " ")
}

// isAcronym reports whether w is at least two upper case letters and no lower case ones.
func isAcronym(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	return letters >= 2
}
