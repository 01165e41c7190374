package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
	slugPattern    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Slugify converts a name into a lowercase ASCII slug: accents are folded,
// other non-ASCII characters dropped, and whitespace runs become hyphens.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-_")
}

// ValidSlug reports whether s only contains letters, digits, hyphens and underscores.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
