// Package slug sanitizes and validates short-link slugs.
package slug

import (
	"regexp"
	"strings"
)

// MaxLength caps slug length in characters.
const MaxLength = 50

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen  = regexp.MustCompile(`-+`)
	validSlug    = regexp.MustCompile(`^[a-z0-9-]{1,50}$`)
)

// Sanitize coerces an arbitrary candidate string into the slug charset:
// lowercase it, drop everything outside [a-z0-9-], collapse hyphen runs
// and trim leading/trailing hyphens. Returns "" when nothing survives.
func Sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = invalidChars.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		return ""
	}
	return s
}

// IsValid reports whether s is already a well-formed slug: 1-50 chars of
// lowercase letters, digits and hyphens.
func IsValid(s string) bool {
	return validSlug.MatchString(s)
}
