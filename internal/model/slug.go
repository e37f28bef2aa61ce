package model

import (
	"regexp"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\p{L}\p{N}\s_-]+`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases name, drops punctuation and joins the remaining words
// with single hyphens.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
