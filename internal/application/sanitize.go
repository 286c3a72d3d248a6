package application

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// sanitizeText trims, collapses whitespace runs and strips angle brackets
// from free-form string input before it reaches storage.
func sanitizeText(value string) string {
	value = strings.TrimSpace(value)
	value = whitespaceRun.ReplaceAllString(value, " ")
	value = strings.NewReplacer("<", "", ">", "").Replace(value)
	return value
}

// normalizeEmail lowercases a sanitized email address for case-insensitive
// uniqueness.
func normalizeEmail(email string) string {
	return strings.ToLower(sanitizeText(email))
}
