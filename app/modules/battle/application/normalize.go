package battleservice

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and removes combining diacritical marks,
// so "Café" and "Cafe" normalize to the same token.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeGuildName canonicalizes a free-text guild name into a comparable
// token: lowercase, diacritics stripped, everything outside [a-z0-9] removed.
// The function is a projection: normalizing twice equals normalizing once.
func NormalizeGuildName(name string) string {
	lower := strings.ToLower(name)

	stripped, _, err := transform.String(stripMarks, lower)
	if err != nil {
		stripped = lower
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
