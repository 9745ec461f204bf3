// Package normalize provides utilities for normalizing user-supplied identity strings.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any character outside the username alphabet.
	invalidUsernameChars = regexp.MustCompile(`[^a-z0-9._-]+`)
	// Matches runs of separator characters.
	separatorRuns = regexp.MustCompile(`[._-]{2,}`)
)

// Email lowercases and trims an email address for case-insensitive indexing.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(stripNullBytes(raw)))
}

// Username converts a display username into its canonical index form.
// "José M. Rivera" -> "jose-m.-rivera" is not what we want, so spaces become
// single hyphens and anything outside [a-z0-9._-] is dropped.
// The canonical form is what the unique username index is keyed on, so
// "BookWorm" and "bookworm" collide.
func Username(raw string) string {
	s := norm.NFKD.String(stripNullBytes(raw))

	// Remove non-ASCII after decomposition.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = invalidUsernameChars.ReplaceAllString(s, "")
	s = separatorRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "._-")

	return s
}

// stripNullBytes removes null bytes, which can corrupt index keys.
func stripNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
