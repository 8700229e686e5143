package formatting

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatPhone rewrites 10 digit numbers as (XXX) XXX-XXXX and 11 digit numbers
// with a leading 1 as +1 (XXX) XXX-XXXX. Any other input is returned unchanged.
func FormatPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
	case len(d) == 11 && d[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", d[1:4], d[4:7], d[7:])
	default:
		return phone
	}
}

// FormatEmail lower-cases and trims an address.
func FormatEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatName capitalizes each space or hyphen separated part of a name.
func FormatName(name string) string {
	fields := strings.Fields(name)
	for i, field := range fields {
		parts := strings.Split(field, "-")
		for j, part := range parts {
			parts[j] = capitalizeNamePart(part)
		}
		fields[i] = strings.Join(parts, "-")
	}
	return strings.Join(fields, " ")
}

// notMacNames start with "mac" but are not Mac surnames.
var notMacNames = map[string]bool{
	"machado": true, "machiavelli": true, "macias": true, "macedo": true,
	"maciel": true, "mackey": true, "mackie": true, "macklin": true,
}

func capitalizeNamePart(part string) string {
	if part == "" || keepsCase(part) {
		return part
	}

	runes := []rune(strings.ToLower(part))
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] == '\'' {
			runes[i+1] = unicode.ToUpper(runes[i+1])
		}
	}

	prefix := strings.ToLower(string(runes[:min(3, len(runes))]))
	switch {
	case strings.HasPrefix(prefix, "mc") && len(runes) > 2:
		runes[2] = unicode.ToUpper(runes[2])
	case prefix == "mac" && letterCount(runes) >= 6 && !notMacNames[strings.ToLower(part)]:
		runes[3] = unicode.ToUpper(runes[3])
	}
	return string(runes)
}

// keepsCase reports whether a name part is already deliberately cased, such as
// McDonald or DeVito. A part starting in lower case is never kept.
func keepsCase(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r) && isMixedCase(s)
}

// isMixedCase reports whether s already has both upper and lower case letters.
func isMixedCase(s string) bool {
	var upper, lower bool
	for _, r := range s {
		if unicode.IsUpper(r) {
			upper = true
		} else if unicode.IsLower(r) {
			lower = true
		}
	}
	return upper && lower
}

func letterCount(runes []rune) int {
	n := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
