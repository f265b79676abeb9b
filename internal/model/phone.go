package model

import (
	"regexp"
	"strings"
)

var bdPhonePattern = regexp.MustCompile(`^(\+880|880|0)?1[3-9]\d{8}$`)

// IsValidBangladeshPhone reports whether the number is a valid Bangladesh
// mobile number after stripping whitespace.
func IsValidBangladeshPhone(phone string) bool {
	return bdPhonePattern.MatchString(stripSpaces(phone))
}

// FormatBangladeshPhone normalizes a Bangladesh mobile number to the +880
// international form.
func FormatBangladeshPhone(phone string) string {
	cleaned := stripSpaces(phone)
	switch {
	case strings.HasPrefix(cleaned, "+880"):
		return cleaned
	case strings.HasPrefix(cleaned, "880"):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "+880" + cleaned[1:]
	default:
		return "+880" + cleaned
	}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
