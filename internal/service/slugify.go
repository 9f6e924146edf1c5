package service

import (
	"regexp"
	"strings"
)

// Text helpers shared by the blog and taxonomy services: URL slug
// generation, HTML stripping for meta descriptions and excerpt trimming.

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// Slugify derives a lowercase, URL-safe slug from a title or name.
// Runs of anything outside [a-z0-9] become single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalidChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StripHTML removes markup tags and collapses whitespace, leaving plain
// text suitable for meta descriptions.
func StripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SmartTrim shortens s to at most length characters without cutting a word
// in half: the cut falls on the last occurrence of delim before the limit,
// and appendix marks the elision. Strings within the limit pass through
// untouched.
func SmartTrim(s string, length int, delim, appendix string) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}

	trimmed := string(runes[:length+len([]rune(delim))])
	if idx := strings.LastIndex(trimmed, delim); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if trimmed != "" {
		trimmed += appendix
	}
	return trimmed
}

// Truncate returns the first length characters of s.
func Truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length])
}
