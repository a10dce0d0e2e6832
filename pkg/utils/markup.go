package utils

import (
	"html"
	"regexp"
	"strings"
)

var (
	brTagPattern   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
)

// StripMarkup converts stored chat content to the plain text the model
// services expect. HTML line breaks become newlines, remaining tags are
// dropped, entities are unescaped.
func StripMarkup(s string) string {
	s = brTagPattern.ReplaceAllString(s, "\n")
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}
