// Package sanitize rewrites free-text identifiers (dataset names, column
// names, variable references inside a model spec) into the restricted
// character set the FaaS API accepts as keys.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DisallowedChars lists every character replaced by an underscore.
const DisallowedChars = `@!#$%^&*()<>?/\|}{~:[].-`

// Canonicalize lowercases, transliterates to ASCII, and replaces every
// character of DisallowedChars with '_'. It is total and idempotent.
func Canonicalize(name string) string {
	lowered := strings.ToLower(name)
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), lowered)
	if err != nil {
		stripped = lowered
	}
	// unidecode renders some scripts with capitals ("Bei Jing ")
	ascii := strings.ToLower(unidecode.Unidecode(stripped))

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if strings.ContainsRune(DisallowedChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// All canonicalizes every element, returning a new slice.
func All(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Canonicalize(n)
	}
	return out
}
