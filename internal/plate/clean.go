package plate

import (
	"regexp"
	"strings"
)

// platePatterns are the Indian registration formats, in precedence order.
var platePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Z]{2}\d{1,2}[A-Z]{1,2}\d{1,4}`), // KA01AB1234
	regexp.MustCompile(`[A-Z]{2}\d{2}[A-Z]{2}\d{4}`),       // TS09AB1234
	regexp.MustCompile(`[A-Z]{3}\d{1,2}[A-Z]?\d{1,4}`),     // DL1CD2345
}

// Clean uppercases raw and drops every character outside A-Z and 0-9.
func Clean(raw string) string {
	upper := strings.ToUpper(raw)
	var b strings.Builder
	b.Grow(len(upper))
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// CleanPlate extracts a registration number from raw.
//
// The cleaned text is searched with each plate pattern in turn and the first
// match of the first matching pattern is returned. Failing that, the cleaned text
// itself is returned when it is 6 to 12 characters long, otherwise "".
func CleanPlate(raw string) string {
	text := Clean(raw)
	if text == "" {
		return ""
	}
	for _, p := range platePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	if len(text) >= 6 && len(text) <= 12 {
		return text
	}
	return ""
}

// hasLetterAndDigit reports whether s contains at least one A-Z and one 0-9.
func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'A' && c <= 'Z':
			letter = true
		case c >= '0' && c <= '9':
			digit = true
		}
		if letter && digit {
			return true
		}
	}
	return false
}
