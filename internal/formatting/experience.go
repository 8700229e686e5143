package formatting

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"resumebuilder/internal/types"
)

const bulletMarker = "•"

var (
	headerPattern       = regexp.MustCompile(`^([^:•*\-][^:]*?):\s*(.+?)\s*\(([^()]+)\)\s*$`)
	leadingBulletPrefix = regexp.MustCompile(`^[-*•]+\s*`)

	monthNamePattern = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{4})\b`)
	slashDatePattern = regexp.MustCompile(`(\b\d{1,2}/)?\b(0?[1-9]|1[0-2])/(\d{4})\b`)
	isoMonthPattern  = regexp.MustCompile(`\b(\d{4})-(0[1-9]|1[0-2])(-\d{1,2})?\b`)
	presentPattern   = regexp.MustCompile(`(?i)\b(present|current)\b`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// FormatExperience bullets each line, normalizes dates and groups bullets under
// "Company: Position (Date)" headers. Formatting its own output is a no-op.
func FormatExperience(text string) (string, []types.ExperienceEntry) {
	var (
		lines   []string
		entries []types.ExperienceEntry
		current *types.ExperienceEntry
	)

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			entries = append(entries, types.ExperienceEntry{
				Company:  strings.TrimSpace(m[1]),
				Position: strings.TrimSpace(m[2]),
				Date:     NormalizeDateRange(m[3]),
				Bullets:  []string{},
			})
			current = &entries[len(entries)-1]
			header := current.Company + ": " + current.Position + " (" + current.Date + ")"
			lines = append(lines, header)
			continue
		}

		bullet := formatBullet(line)
		if bullet == "" {
			continue
		}
		if current == nil {
			entries = append(entries, types.ExperienceEntry{Bullets: []string{}})
			current = &entries[len(entries)-1]
		}
		current.Bullets = append(current.Bullets, strings.TrimSpace(strings.TrimPrefix(bullet, bulletMarker)))
		lines = append(lines, bullet)
	}

	return strings.Join(lines, "\n"), entries
}

// formatBullet returns "• Text." for one experience line.
func formatBullet(line string) string {
	body := strings.TrimSpace(leadingBulletPrefix.ReplaceAllString(line, ""))
	if body == "" {
		return ""
	}

	body = NormalizeDates(body)

	r, size := utf8.DecodeRuneInString(body)
	if unicode.IsLower(r) {
		body = string(unicode.ToUpper(r)) + body[size:]
	}
	if !strings.HasSuffix(body, ".") && !strings.HasSuffix(body, "!") && !strings.HasSuffix(body, "?") {
		body += "."
	}
	return bulletMarker + " " + body
}

// NormalizeDates rewrites month/year substrings into "Month YYYY".
func NormalizeDates(text string) string {
	text = monthNamePattern.ReplaceAllStringFunc(text, func(match string) string {
		m := monthNamePattern.FindStringSubmatch(match)
		month := monthByPrefix[strings.ToLower(m[1])[:3]]
		return month.String() + " " + m[2]
	})
	// Full dates with a day component are left as written.
	text = slashDatePattern.ReplaceAllStringFunc(text, func(match string) string {
		m := slashDatePattern.FindStringSubmatch(match)
		if m[1] != "" {
			return match
		}
		return monthFromNumber(m[2]) + " " + m[3]
	})
	return isoMonthPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := isoMonthPattern.FindStringSubmatch(match)
		if m[3] != "" {
			return match
		}
		return monthFromNumber(m[2]) + " " + m[1]
	})
}

// NormalizeDateRange is NormalizeDates plus "present"/"current" → "Present".
func NormalizeDateRange(text string) string {
	return presentPattern.ReplaceAllString(NormalizeDates(strings.TrimSpace(text)), "Present")
}

func monthFromNumber(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return s
	}
	return time.Month(n).String()
}
