package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lowercases, strips diacritics and collapses whitespace. It is the
// comparison key for every team name, abbreviation and slug.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// Resolve maps a free-form team name, abbreviation or slug to the canonical
// slug. Unknown input comes back folded, so callers always get a usable key.
func Resolve(nameOrAbbrOrSlug string) string {
	key := Fold(nameOrAbbrOrSlug)
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
